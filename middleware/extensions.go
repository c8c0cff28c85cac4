package middleware

import (
	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/gqlerrors"
	"github.com/buildbuildio/stitching/schemainfo"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/jensneuse/abstractlogger"
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

// ApplyExtensions folds every type extension into the definition of the same
// name declared in the same document. Extensions without a base definition
// are kept for the merger.
func ApplyExtensions() Middleware {
	return documentMiddleware("ApplyExtensions", func(ctx *Context, schema *schemainfo.SchemaInfo) (*ast.SchemaDocument, error) {
		doc := schema.Document
		if len(doc.Extensions) == 0 {
			return doc, nil
		}

		defs := append(make(ast.DefinitionList, 0, len(doc.Definitions)), doc.Definitions...)
		positions := make(map[string]int, len(defs))
		for i, def := range defs {
			positions[def.Name] = i
		}

		var orphans ast.DefinitionList
		for _, ext := range doc.Extensions {
			i, ok := positions[ext.Name]
			if !ok {
				orphans = append(orphans, ext)
				continue
			}

			extended, err := extendDefinition(defs[i], ext)
			if err != nil {
				return nil, err
			}
			defs[i] = extended
		}

		ctx.log().Debug("extensions applied",
			abstractlogger.String("schema", schema.Name),
			abstractlogger.Int("extensions", len(doc.Extensions)-len(orphans)),
			abstractlogger.Int("orphans", len(orphans)),
		)

		c := syntax.WithDefinitions(doc, defs)
		c.Extensions = orphans
		return c, nil
	})
}

func extendDefinition(base, ext *ast.Definition) (*ast.Definition, error) {
	if base.Kind != ext.Kind {
		return nil, gqlerrors.NewSchemaMergeError(base, ext,
			"the %s %s cannot be extended by a %s extension", base.Kind, base.Name, ext.Kind)
	}

	fields, err := extendFields(base, ext)
	if err != nil {
		return nil, err
	}

	c := syntax.Clone(base)
	c.Directives = directives.MergeDirectiveLists(base.Directives, ext.Directives)
	c.Interfaces = unionNames(base.Interfaces, ext.Interfaces)
	c.Types = unionNames(base.Types, ext.Types)
	c.Fields = fields
	c.EnumValues = extendEnumValues(base.EnumValues, ext.EnumValues)
	return c, nil
}

// extendFields applies the extension fields in order. A field annotated with
// @remove deletes its base counterpart, a redeclared field must keep its type
// and contributes its directives and extra arguments.
func extendFields(base, ext *ast.Definition) (ast.FieldList, error) {
	fields := append(make(ast.FieldList, 0, len(base.Fields)+len(ext.Fields)), base.Fields...)

	for _, field := range ext.Fields {
		_, i, found := lo.FindIndexOf(fields, func(f *ast.FieldDefinition) bool {
			return f.Name == field.Name
		})

		if directives.IsRemoved(field.Directives) {
			if found {
				fields = append(fields[:i:i], fields[i+1:]...)
			}
			continue
		}

		if !found {
			fields = append(fields, field)
			continue
		}

		existing := fields[i]
		if existing.Type.String() != field.Type.String() {
			return nil, &gqlerrors.ExtensionConflictError{
				TypeName:  base.Name,
				FieldName: field.Name,
				BaseType:  existing.Type.String(),
				ExtType:   field.Type.String(),
			}
		}

		merged := syntax.Clone(existing)
		merged.Directives = directives.MergeDirectiveLists(existing.Directives, field.Directives)
		for _, arg := range field.Arguments {
			if merged.Arguments.ForName(arg.Name) == nil {
				merged.Arguments = append(append(ast.ArgumentDefinitionList{}, merged.Arguments...), arg)
			}
		}
		if merged.Description == "" {
			merged.Description = field.Description
		}
		fields[i] = merged
	}

	return fields, nil
}

func extendEnumValues(base, ext ast.EnumValueList) ast.EnumValueList {
	if len(ext) == 0 {
		return base
	}

	values := append(make(ast.EnumValueList, 0, len(base)+len(ext)), base...)
	for _, value := range ext {
		_, i, found := lo.FindIndexOf(values, func(v *ast.EnumValueDefinition) bool {
			return v.Name == value.Name
		})

		switch {
		case directives.IsRemoved(value.Directives):
			if found {
				values = append(values[:i:i], values[i+1:]...)
			}
		case !found:
			values = append(values, value)
		default:
			merged := syntax.Clone(values[i])
			merged.Directives = directives.MergeDirectiveLists(values[i].Directives, value.Directives)
			values[i] = merged
		}
	}
	return values
}

func unionNames(base, ext []string) []string {
	if len(lo.Without(ext, base...)) == 0 {
		return base
	}
	return lo.Union(base, ext)
}
