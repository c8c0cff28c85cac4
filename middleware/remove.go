package middleware

import (
	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/schemainfo"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/jensneuse/abstractlogger"
	"github.com/vektah/gqlparser/v2/ast"
)

type removeCounter struct {
	removed int
}

var removeRewriter = syntax.Rewriter[*removeCounter]{
	Definition: func(c *removeCounter, _ *syntax.Navigator, def *ast.Definition) *ast.Definition {
		if directives.IsRemoved(def.Directives) {
			c.removed++
			return nil
		}
		return def
	},
	Field: func(c *removeCounter, _ *syntax.Navigator, field *ast.FieldDefinition) *ast.FieldDefinition {
		if directives.IsRemoved(field.Directives) {
			c.removed++
			return nil
		}
		return field
	},
	Argument: func(c *removeCounter, _ *syntax.Navigator, arg *ast.ArgumentDefinition) *ast.ArgumentDefinition {
		if directives.IsRemoved(arg.Directives) {
			c.removed++
			return nil
		}
		return arg
	},
	EnumValue: func(c *removeCounter, _ *syntax.Navigator, value *ast.EnumValueDefinition) *ast.EnumValueDefinition {
		if directives.IsRemoved(value.Directives) {
			c.removed++
			return nil
		}
		return value
	},
}

// ApplyRemove drops every type, field, argument and enum value annotated
// with @remove. References to a removed type are left for the merger to
// report.
func ApplyRemove() Middleware {
	return documentMiddleware("ApplyRemove", func(ctx *Context, schema *schemainfo.SchemaInfo) (*ast.SchemaDocument, error) {
		counter := &removeCounter{}
		doc := removeRewriter.RewriteDocument(counter, schema.Document)
		if counter.removed > 0 {
			ctx.log().Debug("members removed",
				abstractlogger.String("schema", schema.Name),
				abstractlogger.Int("count", counter.removed),
			)
		}
		return doc, nil
	})
}
