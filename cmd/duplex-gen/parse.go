package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RawObjectDef represents a bridged-object schema loaded from YAML.
type RawObjectDef struct {
	Name        string         `yaml:"name"`
	Package     string         `yaml:"package"`
	Description string         `yaml:"description"`
	Members     []RawMemberDef `yaml:"members"`
}

// RawMemberDef represents a single member definition.
type RawMemberDef struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"` // "data", "computed", "computed+setter", "trigger", "action"
	Type        string `yaml:"type"` // "int", "float", "string", "bool", "list", "object"
	Description string `yaml:"description"`
}

// memberKinds are the accepted kind values.
var memberKinds = map[string]bool{
	"data":            true,
	"computed":        true,
	"computed+setter": true,
	"trigger":         true,
	"action":          true,
}

// memberTypes are the accepted type values. Actions carry no type.
var memberTypes = map[string]bool{
	"int":    true,
	"float":  true,
	"string": true,
	"bool":   true,
	"list":   true,
	"object": true,
	"any":    true,
}

// ParseObjectDef parses an object schema from YAML bytes.
func ParseObjectDef(data []byte) (*RawObjectDef, error) {
	var def RawObjectDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing object def: %w", err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("object definition missing name")
	}
	if len(def.Members) == 0 {
		return nil, fmt.Errorf("object %s has no members", def.Name)
	}

	seen := make(map[string]bool)
	for i, m := range def.Members {
		if m.Name == "" {
			return nil, fmt.Errorf("object %s: member %d missing name", def.Name, i)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("object %s: duplicate member %q", def.Name, m.Name)
		}
		seen[m.Name] = true

		if !memberKinds[m.Kind] {
			return nil, fmt.Errorf("object %s: member %q has unknown kind %q", def.Name, m.Name, m.Kind)
		}
		if m.Kind == "action" {
			if m.Type != "" {
				return nil, fmt.Errorf("object %s: action %q must not declare a type", def.Name, m.Name)
			}
			continue
		}
		if m.Type == "" {
			return nil, fmt.Errorf("object %s: member %q missing type", def.Name, m.Name)
		}
		if !memberTypes[m.Type] {
			return nil, fmt.Errorf("object %s: member %q has unknown type %q", def.Name, m.Name, m.Type)
		}
	}

	return &def, nil
}

// LoadObjectDef loads and parses an object schema from a file.
func LoadObjectDef(path string) (*RawObjectDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseObjectDef(data)
}
