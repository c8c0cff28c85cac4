package references

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/gqlerrors"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

// FieldCoordinate addresses a field by the current name of its type and its
// current name.
type FieldCoordinate struct {
	Type  string
	Field string
}

func (c FieldCoordinate) String() string {
	return c.Type + "." + c.Field
}

// Renames holds what has to change in a document: type references by their
// original name and fields by coordinate.
type Renames struct {
	Types  map[string]string
	Fields map[FieldCoordinate]string
}

func (r Renames) IsEmpty() bool {
	return len(r.Types) == 0 && len(r.Fields) == 0
}

// RewriteSchema re-points every reference in doc that still uses a name
// schemaName knew before its types or fields were renamed. An empty
// schemaName matches nodes bound to any schema.
func RewriteSchema(doc *ast.SchemaDocument, schemaName string) (*ast.SchemaDocument, error) {
	if doc == nil {
		return nil, &gqlerrors.NullArgumentError{Argument: "document"}
	}
	if schemaName != "" && !common.IsValidName(schemaName) {
		return nil, &gqlerrors.InvalidNameError{Argument: "schema name", Name: schemaName}
	}

	renames := CollectRenames(doc, schemaName)
	if renames.IsEmpty() {
		return doc, nil
	}

	return Apply(doc, schemaName, renames), nil
}

// CollectRenames computes renamed types and the closure of field renames
// over the implements relation.
func CollectRenames(doc *ast.SchemaDocument, schemaName string) Renames {
	return Renames{
		Types:  collectRenamedTypes(doc, schemaName),
		Fields: newFieldRenamer(doc, schemaName).collect(),
	}
}

func collectRenamedTypes(doc *ast.SchemaDocument, schemaName string) map[string]string {
	res := make(map[string]string)
	for _, def := range doc.Definitions {
		if !directives.IsBoundTo(def.Directives, schemaName) {
			continue
		}
		original := directives.OriginalName(def.Directives, schemaName, def.Name)
		if original != def.Name {
			res[original] = def.Name
		}
	}
	return res
}

type applyContext struct {
	schemaName string
	renames    Renames
	defined    map[string]struct{}
}

// originates reports whether the definition being visited comes from the
// schema the renames belong to and from no other one. A merged definition
// may hold references contributed by every source it is bound to.
func (c *applyContext) originates(def *ast.Definition) bool {
	if def == nil || !directives.IsBoundTo(def.Directives, c.schemaName) {
		return false
	}
	if c.schemaName == "" {
		return true
	}
	return lo.EveryBy(directives.Binds(def.Directives), func(b directives.Bind) bool {
		return b.Schema == c.schemaName
	})
}

// ownsField reports whether field comes from schemaName and from no other
// schema. A field without bindings belongs to whatever its definition is
// bound to.
func ownsField(def *ast.Definition, field *ast.FieldDefinition, schemaName string) bool {
	if schemaName == "" {
		return true
	}
	list := field.Directives
	if len(directives.Binds(list)) == 0 {
		list = def.Directives
	}
	return lo.EveryBy(directives.Binds(list), func(b directives.Bind) bool {
		return b.Schema == schemaName
	})
}

var applyRewriter = syntax.Rewriter[*applyContext]{
	NamedType: func(ctx *applyContext, nav *syntax.Navigator, name string) string {
		to, ok := ctx.renames.Types[name]
		if !ok {
			return name
		}
		// other schemas may still own a type with the original name
		if _, defined := ctx.defined[name]; defined && !ctx.originates(nav.Definition()) {
			return name
		}
		return to
	},
	Field: func(ctx *applyContext, nav *syntax.Navigator, field *ast.FieldDefinition) *ast.FieldDefinition {
		def := nav.Definition()
		if def == nil || nav.InExtension() {
			return field
		}
		to, ok := ctx.renames.Fields[FieldCoordinate{Type: def.Name, Field: field.Name}]
		if !ok || to == field.Name || !ownsField(def, field, ctx.schemaName) {
			return field
		}
		res := syntax.WithFieldName(field, to)
		if ctx.schemaName != "" {
			res.Directives = directives.EnsureBind(field.Directives, ctx.schemaName, field.Name)
		}
		return res
	},
	Definition: func(ctx *applyContext, nav *syntax.Navigator, def *ast.Definition) *ast.Definition {
		// an orphan extension refers to its base type by name
		if !nav.InExtension() {
			return def
		}
		to, ok := ctx.renames.Types[def.Name]
		if !ok {
			return def
		}
		if _, defined := ctx.defined[def.Name]; defined {
			return def
		}
		return syntax.WithDefinitionName(def, to)
	},
}

// Apply rewrites doc with precomputed renames. Applying the same renames to
// its own output changes nothing.
func Apply(doc *ast.SchemaDocument, schemaName string, renames Renames) *ast.SchemaDocument {
	ctx := &applyContext{
		schemaName: schemaName,
		renames:    renames,
		defined:    make(map[string]struct{}, len(doc.Definitions)),
	}
	for _, def := range doc.Definitions {
		ctx.defined[def.Name] = struct{}{}
	}

	return applyRewriter.RewriteDocument(ctx, doc)
}
