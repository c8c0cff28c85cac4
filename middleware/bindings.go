package middleware

import (
	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/schemainfo"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/vektah/gqlparser/v2/ast"
)

var missingBindings = syntax.Rewriter[string]{
	Field: func(schema string, nav *syntax.Navigator, field *ast.FieldDefinition) *ast.FieldDefinition {
		def := nav.Definition()
		if def == nil || nav.InExtension() {
			return field
		}
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			return field
		}
		if directives.IsBoundTo(field.Directives, schema) {
			return field
		}
		return syntax.WithFieldDirectives(field, directives.EnsureBind(field.Directives, schema, field.Name))
	},
}

// ApplyMissingBindings binds every object and interface field that has no
// provenance yet to its source under its current name.
func ApplyMissingBindings() Middleware {
	return documentMiddleware("ApplyMissingBindings", func(_ *Context, schema *schemainfo.SchemaInfo) (*ast.SchemaDocument, error) {
		return missingBindings.RewriteDocument(schema.Name, schema.Document), nil
	})
}
