package schema

import "strings"

// Describe renders the schema in SDL notation, one block per type in
// declaration order with the roots last.
func (s *Schema) Describe() string {
	var b strings.Builder
	for i, t := range s.order {
		if i > 0 {
			b.WriteString("\n")
		}
		switch d := t.(type) {
		case *Interface:
			b.WriteString("interface " + d.Name + " {\n")
			writeFields(&b, d.Fields)
		case *Object:
			b.WriteString("type " + d.Name)
			if len(d.Interfaces) > 0 {
				b.WriteString(" implements " + strings.Join(d.Interfaces, " & "))
			}
			b.WriteString(" {\n")
			writeFields(&b, d.Fields)
		case *InputObject:
			b.WriteString("input " + d.Name + " {\n")
			for _, f := range d.Fields {
				b.WriteString("  " + f.Name + ": " + f.ref.String() + "\n")
			}
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func writeFields(b *strings.Builder, fields []*Field) {
	for _, f := range fields {
		b.WriteString("  " + f.Name)
		if len(f.Args) > 0 {
			args := make([]string, 0, len(f.Args))
			for _, a := range f.Args {
				args = append(args, a.Name+": "+a.ref.String())
			}
			b.WriteString("(" + strings.Join(args, ", ") + ")")
		}
		b.WriteString(": " + f.ref.String() + "\n")
	}
}
