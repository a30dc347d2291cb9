package inspect

import (
	"fmt"
	"sort"
	"strings"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowKinds includes the member category alongside the name.
	ShowKinds bool

	// ShowAccess includes a writability marker.
	ShowAccess bool

	// IndentWidth is the number of spaces per indent level.
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowKinds:   true,
		ShowAccess:  true,
		IndentWidth: 2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	return strings.Repeat(" ", depth*width) + content
}

// FormatValue formats a backing value for display.
func (f *Formatter) FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return fmt.Sprintf("%q", v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.4g", v)
	case []any:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = f.FormatValue(x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, f.FormatValue(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatMember formats a single member line.
func (f *Formatter) FormatMember(info MemberInfo) string {
	var b strings.Builder
	b.WriteString(info.Name)

	if f.ShowKinds {
		fmt.Fprintf(&b, " <%s>", info.Kind)
	}
	if f.ShowAccess {
		if info.Writable {
			b.WriteString(" rw")
		} else {
			b.WriteString(" r-")
		}
	}
	if info.Kind.String() != "action" {
		fmt.Fprintf(&b, " = %s", f.FormatValue(info.Value))
	}
	return b.String()
}

// FormatTree formats the complete bridge structure.
func (f *Formatter) FormatTree(tree *ObjectTree) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bridge %s\n", tree.BridgeID)
	for _, m := range tree.Members {
		b.WriteString(f.Indent(1, f.FormatMember(m)))
		b.WriteByte('\n')
	}
	return b.String()
}
