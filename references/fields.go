package references

import (
	"github.com/buildbuildio/stitching/directives"

	"github.com/vektah/gqlparser/v2/ast"
)

type fieldRenamer struct {
	schemaName    string
	types         map[string]*ast.Definition
	implementedBy map[string][]string
	renames       map[FieldCoordinate]string
	queue         []string
}

func newFieldRenamer(doc *ast.SchemaDocument, schemaName string) *fieldRenamer {
	r := &fieldRenamer{
		schemaName:    schemaName,
		types:         make(map[string]*ast.Definition, len(doc.Definitions)),
		implementedBy: make(map[string][]string),
		renames:       make(map[FieldCoordinate]string),
	}

	for _, def := range doc.Definitions {
		r.types[def.Name] = def
		if !isComplex(def) {
			continue
		}
		for _, iface := range def.Interfaces {
			r.implementedBy[iface] = append(r.implementedBy[iface], def.Name)
		}
		if directives.IsBoundTo(def.Directives, schemaName) {
			r.queue = append(r.queue, def.Name)
		}
	}

	return r
}

func isComplex(def *ast.Definition) bool {
	return def.Kind == ast.Object || def.Kind == ast.Interface
}

// collect runs the worklist until no new field rename is discovered. A type
// can be queued several times; revisiting it records nothing new.
func (r *fieldRenamer) collect() map[FieldCoordinate]string {
	for len(r.queue) > 0 {
		name := r.queue[0]
		r.queue = r.queue[1:]

		def, ok := r.types[name]
		if !ok || !isComplex(def) {
			continue
		}

		for _, field := range def.Fields {
			from, to, renamed := r.fieldRename(def, field)
			if !renamed {
				continue
			}

			switch def.Kind {
			case ast.Object:
				for _, iface := range def.Interfaces {
					if target, ok := r.types[iface]; ok && target.Kind == ast.Interface {
						r.propagate(target, from, to)
					}
				}
			case ast.Interface:
				for _, impl := range r.implementedBy[def.Name] {
					r.propagate(r.types[impl], from, to)
				}
			}
		}
	}

	return r.renames
}

// fieldRename reports the name field had in the schema and the name it must
// end up with.
func (r *fieldRenamer) fieldRename(def *ast.Definition, field *ast.FieldDefinition) (string, string, bool) {
	if to, ok := r.renames[FieldCoordinate{Type: def.Name, Field: field.Name}]; ok {
		return field.Name, to, true
	}

	original := directives.OriginalName(field.Directives, r.schemaName, field.Name)
	if original != field.Name {
		return original, field.Name, true
	}
	return "", "", false
}

func (r *fieldRenamer) propagate(target *ast.Definition, from, to string) {
	if target == nil {
		return
	}
	field := target.Fields.ForName(from)
	if field == nil || field.Name == to || !ownsField(target, field, r.schemaName) {
		return
	}

	coordinate := FieldCoordinate{Type: target.Name, Field: from}
	if r.renames[coordinate] == to {
		return
	}
	r.renames[coordinate] = to
	r.queue = append(r.queue, target.Name)
}
