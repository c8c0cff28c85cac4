package merger

import (
	"github.com/buildbuildio/stitching/gqlerrors"
	"github.com/buildbuildio/stitching/schemainfo"
)

// MergeTypeDelegate merges one group of same-named type definitions
type MergeTypeDelegate func(ctx *Context, group []schemainfo.TypeInfo) error

// MergeDirectiveDelegate merges one group of same-named directive definitions
type MergeDirectiveDelegate func(ctx *Context, group []*schemainfo.DirectiveTypeInfo) error

// TypeMergeRule is one link of the type merge chain. A rule either consumes
// the whole group or passes it unchanged to next.
type TypeMergeRule interface {
	MergeTypes(ctx *Context, group []schemainfo.TypeInfo, next MergeTypeDelegate) error
}

// DirectiveMergeRule is one link of the directive merge chain
type DirectiveMergeRule interface {
	MergeDirectives(ctx *Context, group []*schemainfo.DirectiveTypeInfo, next MergeDirectiveDelegate) error
}

// TypeMergeRuleFactory adapts a function wrapping next into a TypeMergeRule
type TypeMergeRuleFactory func(next MergeTypeDelegate) MergeTypeDelegate

func (f TypeMergeRuleFactory) MergeTypes(ctx *Context, group []schemainfo.TypeInfo, next MergeTypeDelegate) error {
	return f(next)(ctx, group)
}

// DirectiveMergeRuleFactory adapts a function wrapping next into a DirectiveMergeRule
type DirectiveMergeRuleFactory func(next MergeDirectiveDelegate) MergeDirectiveDelegate

func (f DirectiveMergeRuleFactory) MergeDirectives(ctx *Context, group []*schemainfo.DirectiveTypeInfo, next MergeDirectiveDelegate) error {
	return f(next)(ctx, group)
}

// RuleSet holds the rules appended after the custom ones. The zero value
// has no rules at all, so every group ends in MergeRuleExhaustedError.
type RuleSet struct {
	Types      []TypeMergeRule
	Directives []DirectiveMergeRule
}

// DefaultRuleSet returns the built-in per-kind handlers
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Types: []TypeMergeRule{
			ScalarTypeMergeHandler{},
			InputObjectTypeMergeHandler{},
			RootTypeMergeHandler{},
			ObjectTypeMergeHandler{},
			InterfaceTypeMergeHandler{},
			UnionTypeMergeHandler{},
			EnumTypeMergeHandler{},
		},
		Directives: []DirectiveMergeRule{
			DirectiveMergeHandler{},
		},
	}
}

func typeNameOf(group []schemainfo.TypeInfo) string {
	if len(group) == 0 {
		return ""
	}
	return group[0].Definition().Name
}

// compileTypeRules composes rules right to left so that rules[0] runs first.
func compileTypeRules(rules []TypeMergeRule) MergeTypeDelegate {
	next := MergeTypeDelegate(func(_ *Context, group []schemainfo.TypeInfo) error {
		return &gqlerrors.MergeRuleExhaustedError{Name: typeNameOf(group)}
	})

	for i := len(rules) - 1; i >= 0; i-- {
		rule, n := rules[i], next
		next = func(ctx *Context, group []schemainfo.TypeInfo) error {
			return rule.MergeTypes(ctx, group, n)
		}
	}
	return next
}

func compileDirectiveRules(rules []DirectiveMergeRule) MergeDirectiveDelegate {
	next := MergeDirectiveDelegate(func(_ *Context, group []*schemainfo.DirectiveTypeInfo) error {
		name := ""
		if len(group) > 0 {
			name = group[0].Definition.Name
		}
		return &gqlerrors.MergeRuleExhaustedError{Name: name, Directive: true}
	})

	for i := len(rules) - 1; i >= 0; i-- {
		rule, n := rules[i], next
		next = func(ctx *Context, group []*schemainfo.DirectiveTypeInfo) error {
			return rule.MergeDirectives(ctx, group, n)
		}
	}
	return next
}
