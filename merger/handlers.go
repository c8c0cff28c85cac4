package merger

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/gqlerrors"
	"github.com/buildbuildio/stitching/schemainfo"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/jensneuse/abstractlogger"
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

func conflict(left, right *ast.Definition, format string, args ...interface{}) error {
	return gqlerrors.NewSchemaMergeError(left, right, format, args...)
}

// foldGroup merges the definitions of group left to right and adds the result.
func foldGroup[T schemainfo.TypeInfo](
	ctx *Context,
	group []T,
	merge func(a, b *ast.Definition) (*ast.Definition, error),
) error {
	res := group[0].Definition()
	for _, t := range group[1:] {
		merged, err := merge(res, t.Definition())
		if err != nil {
			return err
		}
		res = merged
	}

	ctx.AddType(res)
	ctx.Logger().Debug("type merged",
		abstractlogger.String("type", res.Name),
		abstractlogger.Int("sources", len(group)),
	)
	return nil
}

// validateFields checks that def declares at least one field and no field twice
func validateFields(def *ast.Definition) error {
	if len(def.Fields) == 0 {
		return conflict(def, nil, "the %s %s must define one or more fields", kindName(def.Kind), def.Name)
	}
	if dups := lo.FindDuplicatesBy(def.Fields, func(f *ast.FieldDefinition) string { return f.Name }); len(dups) > 0 {
		return conflict(def, nil, "the field %s.%s is declared more than once", def.Name, dups[0].Name)
	}
	return nil
}

func kindName(kind ast.DefinitionKind) string {
	switch kind {
	case ast.Object:
		return "object type"
	case ast.Interface:
		return "interface"
	case ast.InputObject:
		return "input object"
	case ast.Union:
		return "union"
	case ast.Enum:
		return "enum"
	default:
		return "scalar"
	}
}

func validateGroup[T schemainfo.TypeInfo](group []T) error {
	for _, t := range group {
		if err := validateFields(t.Definition()); err != nil {
			return err
		}
	}
	return nil
}

func mergeComplex(a, b *ast.Definition, isInput bool) (*ast.Definition, error) {
	fields, err := mergeFieldLists(a, b, a.Fields, b.Fields, isInput)
	if err != nil {
		return nil, err
	}
	c := mergeDefinitionHeader(a, b)
	c.Fields = fields
	c.Interfaces = unionNames(a.Interfaces, b.Interfaces)
	return c, nil
}

// ScalarTypeMergeHandler keeps the first scalar definition. Scalars always merge.
type ScalarTypeMergeHandler struct{}

func (ScalarTypeMergeHandler) MergeTypes(ctx *Context, group []schemainfo.TypeInfo, next MergeTypeDelegate) error {
	scalars, ok := schemainfo.AllOf[*schemainfo.ScalarTypeInfo](group)
	if !ok {
		return next(ctx, group)
	}
	return foldGroup(ctx, scalars, func(a, b *ast.Definition) (*ast.Definition, error) {
		return mergeDefinitionHeader(a, b), nil
	})
}

type InputObjectTypeMergeHandler struct{}

func (InputObjectTypeMergeHandler) MergeTypes(ctx *Context, group []schemainfo.TypeInfo, next MergeTypeDelegate) error {
	inputs, ok := schemainfo.AllOf[*schemainfo.InputObjectTypeInfo](group)
	if !ok {
		return next(ctx, group)
	}
	if err := validateGroup(inputs); err != nil {
		return err
	}
	return foldGroup(ctx, inputs, func(a, b *ast.Definition) (*ast.Definition, error) {
		return mergeComplex(a, b, true)
	})
}

// RootTypeMergeHandler merges the root types serving one operation into the
// type with the default root name. A field already contributed by an earlier
// source is renamed to <source>_<field> and bound to its original name.
type RootTypeMergeHandler struct{}

func (RootTypeMergeHandler) MergeTypes(ctx *Context, group []schemainfo.TypeInfo, next MergeTypeDelegate) error {
	objects, ok := schemainfo.AllOf[*schemainfo.ObjectTypeInfo](group)
	if !ok || !lo.EveryBy(objects, func(t *schemainfo.ObjectTypeInfo) bool { return t.IsRootType() }) {
		return next(ctx, group)
	}
	if err := validateGroup(objects); err != nil {
		return err
	}

	first := objects[0]
	op, _ := first.Schema().RootOperation(first.Definition().Name)
	res := syntax.WithDefinitionName(first.Definition(), common.DefaultRootTypeName(op))

	for _, t := range objects[1:] {
		def := t.Definition()
		fields := append(make(ast.FieldList, 0, len(res.Fields)+len(def.Fields)), res.Fields...)
		for _, field := range def.Fields {
			if fields.ForName(field.Name) != nil {
				renamed := syntax.WithFieldName(field, t.Schema().Name+"_"+field.Name)
				renamed.Directives = directives.EnsureBind(field.Directives, t.Schema().Name, field.Name)
				if fields.ForName(renamed.Name) != nil {
					return conflict(res, def, "the field %s.%s of schema %s collides with %s.%s",
						def.Name, field.Name, t.Schema().Name, res.Name, renamed.Name)
				}

				ctx.Logger().Debug("root field renamed",
					abstractlogger.String("schema", t.Schema().Name),
					abstractlogger.String("field", field.Name),
					abstractlogger.String("to", renamed.Name),
				)
				field = renamed
			}
			fields = append(fields, field)
		}

		res = mergeDefinitionHeader(res, def)
		res.Fields = fields
		res.Interfaces = unionNames(res.Interfaces, def.Interfaces)
	}

	ctx.AddType(res)
	ctx.Logger().Debug("root type merged",
		abstractlogger.String("operation", string(op)),
		abstractlogger.Int("sources", len(objects)),
	)
	return nil
}

type ObjectTypeMergeHandler struct{}

func (ObjectTypeMergeHandler) MergeTypes(ctx *Context, group []schemainfo.TypeInfo, next MergeTypeDelegate) error {
	objects, ok := schemainfo.AllOf[*schemainfo.ObjectTypeInfo](group)
	if !ok || lo.SomeBy(objects, func(t *schemainfo.ObjectTypeInfo) bool { return t.IsRootType() }) {
		return next(ctx, group)
	}
	if err := validateGroup(objects); err != nil {
		return err
	}
	return foldGroup(ctx, objects, func(a, b *ast.Definition) (*ast.Definition, error) {
		return mergeComplex(a, b, false)
	})
}

type InterfaceTypeMergeHandler struct{}

func (InterfaceTypeMergeHandler) MergeTypes(ctx *Context, group []schemainfo.TypeInfo, next MergeTypeDelegate) error {
	interfaces, ok := schemainfo.AllOf[*schemainfo.InterfaceTypeInfo](group)
	if !ok {
		return next(ctx, group)
	}
	if err := validateGroup(interfaces); err != nil {
		return err
	}
	return foldGroup(ctx, interfaces, func(a, b *ast.Definition) (*ast.Definition, error) {
		return mergeComplex(a, b, false)
	})
}

type UnionTypeMergeHandler struct{}

func (UnionTypeMergeHandler) MergeTypes(ctx *Context, group []schemainfo.TypeInfo, next MergeTypeDelegate) error {
	unions, ok := schemainfo.AllOf[*schemainfo.UnionTypeInfo](group)
	if !ok {
		return next(ctx, group)
	}
	return foldGroup(ctx, unions, func(a, b *ast.Definition) (*ast.Definition, error) {
		c := mergeDefinitionHeader(a, b)
		c.Types = unionNames(a.Types, b.Types)
		return c, nil
	})
}

type EnumTypeMergeHandler struct{}

func (EnumTypeMergeHandler) MergeTypes(ctx *Context, group []schemainfo.TypeInfo, next MergeTypeDelegate) error {
	enums, ok := schemainfo.AllOf[*schemainfo.EnumTypeInfo](group)
	if !ok {
		return next(ctx, group)
	}
	return foldGroup(ctx, enums, func(a, b *ast.Definition) (*ast.Definition, error) {
		c := mergeDefinitionHeader(a, b)
		c.EnumValues = unionEnumValues(a.EnumValues, b.EnumValues)
		return c, nil
	})
}

// DirectiveMergeHandler keeps the first definition and folds in the
// arguments and locations of the others. The result is repeatable when any
// source declares it so.
type DirectiveMergeHandler struct{}

func (DirectiveMergeHandler) MergeDirectives(ctx *Context, group []*schemainfo.DirectiveTypeInfo, next MergeDirectiveDelegate) error {
	if len(group) == 0 {
		return next(ctx, group)
	}

	res := group[0].Definition
	for _, d := range group[1:] {
		args, err := mergeArguments(res.Arguments, d.Definition.Arguments)
		if err != nil {
			return gqlerrors.NewSchemaMergeError(nil, nil,
				"the directive @%s of schema %s cannot be merged: %s", res.Name, d.Schema.Name, err)
		}

		c := syntax.Clone(res)
		c.Arguments = args
		c.Locations = lo.Union(res.Locations, d.Definition.Locations)
		c.IsRepeatable = res.IsRepeatable || d.Definition.IsRepeatable
		if c.Description == "" {
			c.Description = d.Definition.Description
		}
		res = c
	}

	ctx.AddDirective(res)
	return nil
}
