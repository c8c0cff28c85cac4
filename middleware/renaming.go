package middleware

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/gqlerrors"
	"github.com/buildbuildio/stitching/references"
	"github.com/buildbuildio/stitching/schemainfo"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/jensneuse/abstractlogger"
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/exp/slices"
)

// Rename is a rename configured by the host instead of a @rename usage.
// An empty Field renames the type, an empty Schema targets every source.
type Rename struct {
	Schema string
	Type   string
	Field  string
	To     string
}

func (r Rename) coordinate() string {
	if r.Field == "" {
		return r.Type
	}
	return r.Type + "." + r.Field
}

// ApplyRenaming annotates the configured members with @rename so that
// ApplyLocalRenaming handles them like renames declared in the SDL. A member
// that already carries @rename keeps it.
func ApplyRenaming(renames ...Rename) Middleware {
	return documentMiddleware("ApplyRenaming", func(ctx *Context, schema *schemainfo.SchemaInfo) (*ast.SchemaDocument, error) {
		applicable := lo.Filter(renames, func(r Rename, _ int) bool {
			return r.Schema == "" || r.Schema == schema.Name
		})
		if len(applicable) == 0 {
			return schema.Document, nil
		}

		for _, r := range applicable {
			if !common.IsValidName(r.To) {
				return nil, &gqlerrors.RenameDirectiveInvalidStructureError{
					Coordinate: r.coordinate(),
					Reason:     r.To + " is not a valid GraphQL name",
				}
			}
		}

		return configuredRenames.RewriteDocument(applicable, schema.Document), nil
	})
}

func findRename(renames []Rename, typeName, fieldName string) (Rename, bool) {
	return lo.Find(renames, func(r Rename) bool {
		return r.Type == typeName && r.Field == fieldName
	})
}

var configuredRenames = syntax.Rewriter[[]Rename]{
	Definition: func(renames []Rename, nav *syntax.Navigator, def *ast.Definition) *ast.Definition {
		r, ok := findRename(renames, def.Name, "")
		if !ok || nav.InExtension() || directives.Has(def.Directives, directives.RenameDirectiveName) {
			return def
		}
		return syntax.WithDefinitionDirectives(def, append(cloneDirectives(def.Directives), directives.NewRename(r.To)))
	},
	Field: func(renames []Rename, nav *syntax.Navigator, field *ast.FieldDefinition) *ast.FieldDefinition {
		def := nav.Definition()
		if def == nil || nav.InExtension() {
			return field
		}
		r, ok := findRename(renames, def.Name, field.Name)
		if !ok || directives.Has(field.Directives, directives.RenameDirectiveName) {
			return field
		}
		return syntax.WithFieldDirectives(field, append(cloneDirectives(field.Directives), directives.NewRename(r.To)))
	},
}

func cloneDirectives(list ast.DirectiveList) ast.DirectiveList {
	return append(make(ast.DirectiveList, 0, len(list)+1), list...)
}

// ApplyLocalRenaming consumes every @rename of a document. The renamed
// member gets @_hc_bind(to: <source>, as: <old name>), renamed interface
// fields are renamed in every implementor, then type references are
// re-pointed to the new names.
func ApplyLocalRenaming() Middleware {
	return documentMiddleware("ApplyLocalRenaming", func(ctx *Context, schema *schemainfo.SchemaInfo) (*ast.SchemaDocument, error) {
		rc, err := NewRenameContext(schema.Name, schema.Document)
		if err != nil {
			return nil, err
		}
		if rc.IsEmpty() {
			return schema.Document, nil
		}

		rc.propagateInterfaceFields()

		ctx.log().Debug("renaming",
			abstractlogger.String("schema", schema.Name),
			abstractlogger.Int("types", len(rc.Types)),
			abstractlogger.Int("fields", len(rc.Fields)),
		)

		doc := localRenames.RewriteDocument(rc, schema.Document)
		return references.RewriteSchema(doc, schema.Name)
	})
}

// RenameContext is the index built from the @rename usages of one document.
type RenameContext struct {
	Schema string
	// Types maps a type name to its new name
	Types map[string]string
	// Fields maps a field coordinate to the new field name
	Fields map[references.FieldCoordinate]string
	// ImplementedBy maps an interface to the object and interface types
	// declaring it, in document order
	ImplementedBy map[string][]string

	definitions map[string]*ast.Definition
	err         error
}

// NewRenameContext indexes doc and validates every @rename usage
func NewRenameContext(schemaName string, doc *ast.SchemaDocument) (*RenameContext, error) {
	rc := &RenameContext{
		Schema:        schemaName,
		Types:         make(map[string]string),
		Fields:        make(map[references.FieldCoordinate]string),
		ImplementedBy: make(map[string][]string),
		definitions:   make(map[string]*ast.Definition, len(doc.Definitions)),
	}

	renameIndexer.Walk(rc, doc)
	if rc.err != nil {
		return nil, rc.err
	}
	return rc, nil
}

func (rc *RenameContext) IsEmpty() bool {
	return len(rc.Types) == 0 && len(rc.Fields) == 0
}

var renameIndexer = syntax.Walker[*RenameContext]{
	EnterDefinition: func(rc *RenameContext, nav *syntax.Navigator, def *ast.Definition) {
		if nav.InExtension() || rc.err != nil {
			return
		}
		rc.definitions[def.Name] = def
		if def.Kind == ast.Object || def.Kind == ast.Interface {
			for _, iface := range def.Interfaces {
				rc.ImplementedBy[iface] = append(rc.ImplementedBy[iface], def.Name)
			}
		}

		dir := def.Directives.ForName(directives.RenameDirectiveName)
		if dir == nil {
			return
		}
		to, err := directives.ParseRename(dir, def.Name)
		if err != nil {
			rc.err = err
			return
		}
		rc.Types[def.Name] = to
	},
	EnterField: func(rc *RenameContext, nav *syntax.Navigator, field *ast.FieldDefinition) {
		def := nav.Definition()
		if nav.InExtension() || def == nil || rc.err != nil {
			return
		}

		dir := field.Directives.ForName(directives.RenameDirectiveName)
		if dir == nil {
			return
		}
		coordinate := references.FieldCoordinate{Type: def.Name, Field: field.Name}
		to, err := directives.ParseRename(dir, coordinate.String())
		if err != nil {
			rc.err = err
			return
		}
		rc.Fields[coordinate] = to
	},
}

// propagateInterfaceFields copies interface field renames to every type
// implementing the interface, transitively. An explicit rename on the
// implementor wins.
func (rc *RenameContext) propagateInterfaceFields() {
	queue := lo.Keys(rc.Fields)
	slices.SortFunc(queue, func(a, b references.FieldCoordinate) bool {
		return a.String() < b.String()
	})
	for len(queue) > 0 {
		coordinate := queue[0]
		queue = queue[1:]

		def, ok := rc.definitions[coordinate.Type]
		if !ok || def.Kind != ast.Interface {
			continue
		}

		to := rc.Fields[coordinate]
		for _, impl := range rc.ImplementedBy[def.Name] {
			target := references.FieldCoordinate{Type: impl, Field: coordinate.Field}
			if _, renamed := rc.Fields[target]; renamed {
				continue
			}
			if rc.definitions[impl].Fields.ForName(coordinate.Field) == nil {
				continue
			}
			rc.Fields[target] = to
			queue = append(queue, target)
		}
	}
}

// replaceRename swaps @rename for the provenance binding of the old name.
func replaceRename(list ast.DirectiveList, schema, original string) ast.DirectiveList {
	return directives.EnsureBind(directives.Strip(list, directives.RenameDirectiveName), schema, original)
}

var localRenames = syntax.Rewriter[*RenameContext]{
	Definition: func(rc *RenameContext, nav *syntax.Navigator, def *ast.Definition) *ast.Definition {
		if nav.InExtension() {
			return def
		}
		to, ok := rc.Types[def.Name]
		if !ok {
			return def
		}
		res := syntax.WithDefinitionDirectives(def, replaceRename(def.Directives, rc.Schema, def.Name))
		res.Name = to
		return res
	},
	Field: func(rc *RenameContext, nav *syntax.Navigator, field *ast.FieldDefinition) *ast.FieldDefinition {
		def := nav.Definition()
		if def == nil || nav.InExtension() {
			return field
		}
		to, ok := rc.Fields[references.FieldCoordinate{Type: def.Name, Field: field.Name}]
		if !ok {
			return field
		}
		res := syntax.WithFieldDirectives(field, replaceRename(field.Directives, rc.Schema, field.Name))
		res.Name = to
		return res
	},
}
