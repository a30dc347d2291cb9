// Command duplex-gen generates a typed Go facade over a bridged object
// from a YAML member schema.
//
// The schema names an object, its package, and its members with their
// category and value type. The generated file wraps a *bridge.Object in
// typed getters, setters, subscription hooks, trigger invokers, and
// method calls, so application code works with concrete types instead
// of name-and-any access.
//
// Usage:
//
//	duplex-gen -schema <path> -output <dir> [-package <name>]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"
)

func main() {
	schemaPath := flag.String("schema", "", "Path to object schema YAML")
	outputDir := flag.String("output", "", "Output directory for the generated Go file")
	pkgName := flag.String("package", "", "Package name (default: schema's package field)")
	flag.Parse()

	if *schemaPath == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: duplex-gen -schema <path> -output <dir> [-package <name>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*schemaPath, *outputDir, *pkgName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(schemaPath, outputDir, pkgName string) error {
	def, err := LoadObjectDef(schemaPath)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	code, err := GenerateFacade(def, pkgName)
	if err != nil {
		return fmt.Errorf("generating facade: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	outPath := filepath.Join(outputDir, facadeFileName(def.Name)+"_gen.go")
	if err := writeFormatted(outPath, code); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(outPath), err)
	}
	fmt.Printf("  generated %s\n", outPath)
	return nil
}

// writeFormatted formats Go source code with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Write unformatted so you can debug the generator output
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}

// facadeFileName converts "TaskList" to "task_list".
func facadeFileName(name string) string {
	var result strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteByte('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
