package main

import (
	"strings"
)

// memberAccessorData holds per-member data for the accessor templates.
type memberAccessorData struct {
	Facade   string
	Member   RawMemberDef
	Writable bool
}

// GenerateFacade produces the typed facade source for def. The package
// name comes from the schema, overridable by pkgOverride.
func GenerateFacade(def *RawObjectDef, pkgOverride string) (string, error) {
	pkg := def.Package
	if pkgOverride != "" {
		pkg = pkgOverride
	}
	if pkg == "" {
		pkg = strings.ToLower(def.Name)
	}

	var b strings.Builder
	renderTemplate(&b, "header", facadeData{
		Package:     pkg,
		Name:        def.Name,
		Description: def.Description,
	})
	renderTemplate(&b, "facadeStruct", facadeData{
		Name:        def.Name,
		Description: def.Description,
	})

	for _, m := range def.Members {
		data := memberAccessorData{Facade: def.Name, Member: m}
		switch m.Kind {
		case "data":
			renderTemplate(&b, "dataAccessors", data)
		case "computed":
			renderTemplate(&b, "computedAccessors", data)
		case "computed+setter":
			data.Writable = true
			renderTemplate(&b, "computedAccessors", data)
		case "trigger":
			renderTemplate(&b, "triggerAccessors", data)
		case "action":
			renderTemplate(&b, "actionAccessors", data)
		}
	}

	return b.String(), nil
}
