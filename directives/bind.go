package directives

import (
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

// Bind is the provenance recorded by @_hc_bind(to: schema, as: name).
type Bind struct {
	Schema string
	Name   string
}

// NewBind builds the provenance directive for a node that originates from
// schema under the given name.
func NewBind(schema, name string) *ast.Directive {
	return &ast.Directive{
		Name: BindDirectiveName,
		Arguments: ast.ArgumentList{
			{Name: ToArgumentName, Value: stringValue(schema)},
			{Name: AsArgumentName, Value: stringValue(name)},
		},
	}
}

func parseBind(dir *ast.Directive) Bind {
	schema, _ := StringArgument(dir, ToArgumentName)
	name, _ := StringArgument(dir, AsArgumentName)
	return Bind{Schema: schema, Name: name}
}

// Binds returns every provenance entry found in list
func Binds(list ast.DirectiveList) []Bind {
	return lo.Map(list.ForNames(BindDirectiveName), func(d *ast.Directive, _ int) Bind {
		return parseBind(d)
	})
}

// BindFor returns the provenance recorded for schema. An empty schema
// matches the first entry.
func BindFor(list ast.DirectiveList, schema string) (Bind, bool) {
	return lo.Find(Binds(list), func(b Bind) bool {
		return schema == "" || b.Schema == schema
	})
}

// IsBoundTo reports whether the node originates from schema
func IsBoundTo(list ast.DirectiveList, schema string) bool {
	_, ok := BindFor(list, schema)
	return ok
}

// OriginalName returns the name the node had in schema, falling back to current
func OriginalName(list ast.DirectiveList, schema, current string) string {
	b, ok := BindFor(list, schema)
	if !ok || b.Name == "" {
		return current
	}
	return b.Name
}

// EnsureBind appends @_hc_bind(to: schema, as: name) unless a binding for
// schema is already present.
func EnsureBind(list ast.DirectiveList, schema, name string) ast.DirectiveList {
	if lo.ContainsBy(Binds(list), func(b Bind) bool { return b.Schema == schema }) {
		return list
	}
	res := make(ast.DirectiveList, 0, len(list)+1)
	res = append(res, list...)
	return append(res, NewBind(schema, name))
}

// MergeDirectiveLists unions b into a. Directives are unique by name, except
// bindings which are unique per schema.
func MergeDirectiveLists(a, b ast.DirectiveList) ast.DirectiveList {
	res := a
	copied := false
	for _, dir := range b {
		if dir.Name == BindDirectiveName {
			bind := parseBind(dir)
			if lo.ContainsBy(Binds(res), func(existing Bind) bool { return existing.Schema == bind.Schema }) {
				continue
			}
		} else if res.ForName(dir.Name) != nil {
			continue
		}

		if !copied {
			res = append(make(ast.DirectiveList, 0, len(a)+len(b)), a...)
			copied = true
		}
		res = append(res, dir)
	}
	return res
}
