package merger

import (
	"fmt"

	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

// mergeTypeRefs checks that a and b only differ in nullability. Output
// positions are non-null only if both sides are, input positions as soon as
// one side is: a source may always require an input, but a non-null output
// can only be promised when every source does.
func mergeTypeRefs(a, b *ast.Type, isInput bool) (*ast.Type, error) {
	if (a.Elem == nil) != (b.Elem == nil) {
		return nil, fmt.Errorf("%s and %s differ in list wrapping", a, b)
	}

	nonNull := a.NonNull && b.NonNull
	if isInput {
		nonNull = a.NonNull || b.NonNull
	}

	if a.Elem == nil {
		if a.NamedType != b.NamedType {
			return nil, fmt.Errorf("%s and %s are different types", a, b)
		}
		if a.NonNull == nonNull {
			return a, nil
		}
		c := syntax.Clone(a)
		c.NonNull = nonNull
		return c, nil
	}

	elem, err := mergeTypeRefs(a.Elem, b.Elem, isInput)
	if err != nil {
		return nil, err
	}
	if elem == a.Elem && a.NonNull == nonNull {
		return a, nil
	}
	c := syntax.Clone(a)
	c.NonNull = nonNull
	c.Elem = elem
	return c, nil
}

func mergeArguments(a, b ast.ArgumentDefinitionList) (ast.ArgumentDefinitionList, error) {
	res := a
	copied := false
	for _, arg := range b {
		_, i, found := lo.FindIndexOf(res, func(existing *ast.ArgumentDefinition) bool {
			return existing.Name == arg.Name
		})

		if !copied {
			res = append(make(ast.ArgumentDefinitionList, 0, len(a)+len(b)), a...)
			copied = true
		}

		if !found {
			res = append(res, arg)
			continue
		}

		typ, err := mergeTypeRefs(res[i].Type, arg.Type, true)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", arg.Name, err)
		}
		if typ != res[i].Type {
			merged := syntax.Clone(res[i])
			merged.Type = typ
			res[i] = merged
		}
	}
	return res, nil
}

func mergeField(a, b *ast.FieldDefinition, isInput bool) (*ast.FieldDefinition, error) {
	typ, err := mergeTypeRefs(a.Type, b.Type, isInput)
	if err != nil {
		return nil, err
	}
	args, err := mergeArguments(a.Arguments, b.Arguments)
	if err != nil {
		return nil, err
	}

	c := syntax.Clone(a)
	c.Type = typ
	c.Arguments = args
	c.Directives = directives.MergeDirectiveLists(a.Directives, b.Directives)
	if c.Description == "" {
		c.Description = b.Description
	}
	if c.DefaultValue == nil {
		c.DefaultValue = b.DefaultValue
	}
	return c, nil
}

// mergeFieldLists unions b into a by field name, keeping the order of first
// appearance.
func mergeFieldLists(left, right *ast.Definition, a, b ast.FieldList, isInput bool) (ast.FieldList, error) {
	res := append(make(ast.FieldList, 0, len(a)+len(b)), a...)
	for _, field := range b {
		_, i, found := lo.FindIndexOf(res, func(existing *ast.FieldDefinition) bool {
			return existing.Name == field.Name
		})
		if !found {
			res = append(res, field)
			continue
		}

		merged, err := mergeField(res[i], field, isInput)
		if err != nil {
			return nil, conflict(left, right, "the field %s.%s cannot be merged: %s", left.Name, field.Name, err)
		}
		res[i] = merged
	}
	return res, nil
}

func unionNames(a, b []string) []string {
	if len(lo.Without(b, a...)) == 0 {
		return a
	}
	return lo.Union(a, b)
}

func unionEnumValues(a, b ast.EnumValueList) ast.EnumValueList {
	res := append(make(ast.EnumValueList, 0, len(a)+len(b)), a...)
	for _, value := range b {
		_, i, found := lo.FindIndexOf(res, func(existing *ast.EnumValueDefinition) bool {
			return existing.Name == value.Name
		})
		if !found {
			res = append(res, value)
			continue
		}
		merged := syntax.Clone(res[i])
		merged.Directives = directives.MergeDirectiveLists(res[i].Directives, value.Directives)
		if merged.Description == "" {
			merged.Description = value.Description
		}
		res[i] = merged
	}
	return res
}

// mergeDefinitionHeader merges what every kind shares: description and directives.
func mergeDefinitionHeader(a, b *ast.Definition) *ast.Definition {
	c := syntax.Clone(a)
	c.Directives = directives.MergeDirectiveLists(a.Directives, b.Directives)
	if c.Description == "" {
		c.Description = b.Description
	}
	return c
}
