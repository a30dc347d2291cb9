package main

import (
	"fmt"
	"strings"
	"text/template"
)

// funcMap provides helper functions available to all templates.
var funcMap = template.FuncMap{
	"goName":      goName,
	"goType":      goType,
	"isContainer": isContainer,
	"firstLower":  firstLower,
	"recv":        func(name string) string { return strings.ToLower(name[:1]) },
	"quote":       func(s string) string { return fmt.Sprintf("%q", s) },
}

// templates holds all parsed code generation templates.
var templates = template.Must(template.New("").Funcs(funcMap).Parse(
	headerTmpl +
		facadeStructTmpl +
		dataAccessorsTmpl +
		computedAccessorsTmpl +
		triggerAccessorsTmpl +
		actionAccessorsTmpl,
))

// renderTemplate executes a named template into the builder.
func renderTemplate(b *strings.Builder, name string, data any) {
	if err := templates.ExecuteTemplate(b, name, data); err != nil {
		panic(fmt.Sprintf("template %s: %v", name, err))
	}
}

// goName converts "taskCount" to "TaskCount".
func goName(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// firstLower lowercases the first character of s.
func firstLower(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// goType maps a schema type to its Go representation.
func goType(t string) string {
	switch t {
	case "int":
		return "int"
	case "float":
		return "float64"
	case "string":
		return "string"
	case "bool":
		return "bool"
	case "list":
		return "[]any"
	case "object":
		return "map[string]any"
	default:
		return "any"
	}
}

// isContainer reports whether the schema type is backed by a container.
func isContainer(t string) bool {
	return t == "list" || t == "object"
}

// --- Template data types ---

// facadeData holds pre-computed data for the facade templates.
type facadeData struct {
	Package     string
	Name        string
	Description string
	Members     []RawMemberDef
}

// --- Template definitions ---

const headerTmpl = `{{define "header" -}}
// Code generated by duplex-gen. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/duplex-state/duplex-go/pkg/bridge"
	"github.com/duplex-state/duplex-go/pkg/proxy"
	"github.com/duplex-state/duplex-go/pkg/reactive"
)
{{end}}`

const facadeStructTmpl = `{{define "facadeStruct"}}
{{- if .Description}}
// {{.Name}} is a typed facade over a bridged object: {{firstLower .Description}}
{{- else}}
// {{.Name}} is a typed facade over a bridged object.
{{- end}}
type {{.Name}} struct {
	obj *bridge.Object
}

// New{{.Name}} wraps an existing bridge.
func New{{.Name}}(obj *bridge.Object) *{{.Name}} {
	return &{{.Name}}{obj: obj}
}

// Object returns the underlying bridged object.
func ({{recv .Name}} *{{.Name}}) Object() *bridge.Object {
	return {{recv .Name}}.obj
}
{{end}}`

const dataAccessorsTmpl = `{{define "dataAccessors"}}
{{- $r := recv .Facade}}
{{- $n := goName .Member.Name}}
{{- if .Member.Description}}
// {{$n}} reads {{firstLower .Member.Description}}
{{- else}}
// {{$n}} reads the {{.Member.Name}} member.
{{- end}}
func ({{$r}} *{{.Facade}}) {{$n}}() {{goType .Member.Type}} {
	v, _ := {{$r}}.obj.Snapshot({{quote .Member.Name}}).({{goType .Member.Type}})
	return v
}
{{if isContainer .Member.Type}}
// {{$n}}Node returns the mutation proxy for {{.Member.Name}}. Writes
// through the node are batched until the loop checkpoint runs.
func ({{$r}} *{{.Facade}}) {{$n}}Node() *proxy.Node {
	node, _ := {{$r}}.obj.Get({{quote .Member.Name}}).(*proxy.Node)
	return node
}
{{end}}
// Set{{$n}} assigns the {{.Member.Name}} member.
func ({{$r}} *{{.Facade}}) Set{{$n}}(v {{goType .Member.Type}}) error {
	return {{$r}}.obj.Set({{quote .Member.Name}}, v)
}

// On{{$n}}Changed registers fn against changes of {{.Member.Name}}.
func ({{$r}} *{{.Facade}}) On{{$n}}Changed(fn func({{goType .Member.Type}})) (reactive.Disposer, error) {
	return {{$r}}.obj.Subscribe({{quote .Member.Name}}, func(raw any) {
		v, _ := raw.({{goType .Member.Type}})
		fn(v)
	})
}
{{end}}`

const computedAccessorsTmpl = `{{define "computedAccessors"}}
{{- $r := recv .Facade}}
{{- $n := goName .Member.Name}}
{{- if .Member.Description}}
// {{$n}} reads {{firstLower .Member.Description}}
{{- else}}
// {{$n}} reads the derived {{.Member.Name}} member.
{{- end}}
func ({{$r}} *{{.Facade}}) {{$n}}() {{goType .Member.Type}} {
	v, _ := {{$r}}.obj.Snapshot({{quote .Member.Name}}).({{goType .Member.Type}})
	return v
}
{{if .Writable}}
// Set{{$n}} assigns the {{.Member.Name}} member through its write path.
// The write may fail with bridge.ErrAssignComputed if the member turns
// out to be read-only.
func ({{$r}} *{{.Facade}}) Set{{$n}}(v {{goType .Member.Type}}) error {
	return {{$r}}.obj.Set({{quote .Member.Name}}, v)
}
{{end}}
// On{{$n}}Changed registers fn against recomputations of {{.Member.Name}}.
func ({{$r}} *{{.Facade}}) On{{$n}}Changed(fn func({{goType .Member.Type}})) (reactive.Disposer, error) {
	return {{$r}}.obj.Subscribe({{quote .Member.Name}}, func(raw any) {
		v, _ := raw.({{goType .Member.Type}})
		fn(v)
	})
}
{{end}}`

const triggerAccessorsTmpl = `{{define "triggerAccessors"}}
{{- $r := recv .Facade}}
{{- $n := goName .Member.Name}}
{{- if .Member.Description}}
// Fire{{$n}} invokes {{firstLower .Member.Description}}
{{- else}}
// Fire{{$n}} invokes the {{.Member.Name}} trigger.
{{- end}}
func ({{$r}} *{{.Facade}}) Fire{{$n}}(v {{goType .Member.Type}}) error {
	return {{$r}}.obj.Set({{quote .Member.Name}}, v)
}

// Last{{$n}} returns the value most recently written to {{.Member.Name}}.
func ({{$r}} *{{.Facade}}) Last{{$n}}() {{goType .Member.Type}} {
	v, _ := {{$r}}.obj.Snapshot({{quote .Member.Name}}).({{goType .Member.Type}})
	return v
}
{{end}}`

const actionAccessorsTmpl = `{{define "actionAccessors"}}
{{- $r := recv .Facade}}
{{- $n := goName .Member.Name}}
{{- if .Member.Description}}
// {{$n}} calls {{firstLower .Member.Description}}
{{- else}}
// {{$n}} calls the {{.Member.Name}} method.
{{- end}}
func ({{$r}} *{{.Facade}}) {{$n}}(args ...any) (any, error) {
	return {{$r}}.obj.Call({{quote .Member.Name}}, args...)
}
{{end}}`
