package common

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

const (
	QueryTypeName        = "Query"
	MutationTypeName     = "Mutation"
	SubscriptionTypeName = "Subscription"
)

// RootOperations lists operation kinds in the order root types are merged and emitted
var RootOperations = []ast.Operation{ast.Query, ast.Mutation, ast.Subscription}

var builtinScalars = []string{"Int", "Float", "String", "Boolean", "ID"}

var builtinDirectives = []string{"skip", "include", "deprecated", "specifiedBy", "oneOf", "defer"}

var nameRegexp = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// IsValidName reports whether name matches the GraphQL Name production
func IsValidName(name string) bool {
	return nameRegexp.MatchString(name)
}

// IsBuiltinName reports whether name is reserved for introspection
func IsBuiltinName(name string) bool {
	return strings.HasPrefix(name, "__")
}

func IsBuiltinScalar(name string) bool {
	return lo.Contains(builtinScalars, name)
}

func IsBuiltinDirective(name string) bool {
	return lo.Contains(builtinDirectives, name)
}

// DefaultRootTypeName returns the conventional type name for operation
func DefaultRootTypeName(op ast.Operation) string {
	switch op {
	case ast.Mutation:
		return MutationTypeName
	case ast.Subscription:
		return SubscriptionTypeName
	default:
		return QueryTypeName
	}
}

// SortedKeys returns map keys in lexicographic order
func SortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
