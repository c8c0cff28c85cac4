package syntax

import "github.com/vektah/gqlparser/v2/ast"

// Rewriter rebuilds a schema document bottom-up. Children are rewritten
// before their parent and a parent is copied only when one of its children
// changed, so untouched subtrees stay shared with the input document.
//
// Every hook is optional. A hook receives the node after its children were
// rewritten and returns its replacement; returning the argument keeps the
// node, returning nil drops it from the enclosing list. NamedType is applied
// to every type reference: field and argument types, implemented interfaces,
// union members and schema operation types. An empty name drops the
// reference from interface and member lists.
type Rewriter[C any] struct {
	Definition          func(ctx C, nav *Navigator, def *ast.Definition) *ast.Definition
	Field               func(ctx C, nav *Navigator, field *ast.FieldDefinition) *ast.FieldDefinition
	Argument            func(ctx C, nav *Navigator, arg *ast.ArgumentDefinition) *ast.ArgumentDefinition
	EnumValue           func(ctx C, nav *Navigator, value *ast.EnumValueDefinition) *ast.EnumValueDefinition
	Directive           func(ctx C, nav *Navigator, dir *ast.Directive) *ast.Directive
	DirectiveDefinition func(ctx C, nav *Navigator, def *ast.DirectiveDefinition) *ast.DirectiveDefinition
	NamedType           func(ctx C, nav *Navigator, name string) string
}

// RewriteDocument returns doc itself when no hook changed anything.
func (r *Rewriter[C]) RewriteDocument(ctx C, doc *ast.SchemaDocument) *ast.SchemaDocument {
	if doc == nil {
		return nil
	}

	nav := &Navigator{}
	nav.Push(doc)
	defer nav.Pop()

	schema, schemaChanged := rewriteList(doc.Schema, func(s *ast.SchemaDefinition) *ast.SchemaDefinition {
		return r.rewriteSchemaDefinition(ctx, nav, s)
	})
	schemaExt, schemaExtChanged := rewriteList(doc.SchemaExtension, func(s *ast.SchemaDefinition) *ast.SchemaDefinition {
		return r.rewriteSchemaDefinition(ctx, nav, s)
	})
	dirs, dirsChanged := rewriteList(doc.Directives, func(d *ast.DirectiveDefinition) *ast.DirectiveDefinition {
		return r.rewriteDirectiveDefinition(ctx, nav, d)
	})
	defs, defsChanged := rewriteList(doc.Definitions, func(d *ast.Definition) *ast.Definition {
		return r.RewriteDefinition(ctx, nav, d)
	})

	nav.inExtension = true
	exts, extsChanged := rewriteList(doc.Extensions, func(d *ast.Definition) *ast.Definition {
		return r.RewriteDefinition(ctx, nav, d)
	})
	nav.inExtension = false

	if !schemaChanged && !schemaExtChanged && !dirsChanged && !defsChanged && !extsChanged {
		return doc
	}

	c := Clone(doc)
	c.Schema = schema
	c.SchemaExtension = schemaExt
	c.Directives = dirs
	c.Definitions = defs
	c.Extensions = exts
	return c
}

// RewriteDefinition rewrites a single type definition. nav may be nil.
func (r *Rewriter[C]) RewriteDefinition(ctx C, nav *Navigator, def *ast.Definition) *ast.Definition {
	if nav == nil {
		nav = &Navigator{}
	}

	nav.Push(def)
	directives, directivesChanged := r.rewriteDirectives(ctx, nav, def.Directives)
	interfaces, interfacesChanged := r.rewriteNames(ctx, nav, def.Interfaces)
	types, typesChanged := r.rewriteNames(ctx, nav, def.Types)
	fields, fieldsChanged := rewriteList(def.Fields, func(f *ast.FieldDefinition) *ast.FieldDefinition {
		return r.rewriteField(ctx, nav, f)
	})
	values, valuesChanged := rewriteList(def.EnumValues, func(v *ast.EnumValueDefinition) *ast.EnumValueDefinition {
		return r.rewriteEnumValue(ctx, nav, v)
	})
	nav.Pop()

	res := def
	if directivesChanged || interfacesChanged || typesChanged || fieldsChanged || valuesChanged {
		res = Clone(def)
		res.Directives = directives
		res.Interfaces = interfaces
		res.Types = types
		res.Fields = fields
		res.EnumValues = values
	}

	if r.Definition != nil {
		return r.Definition(ctx, nav, res)
	}
	return res
}

func (r *Rewriter[C]) rewriteField(ctx C, nav *Navigator, field *ast.FieldDefinition) *ast.FieldDefinition {
	nav.Push(field)
	args, argsChanged := rewriteList(field.Arguments, func(a *ast.ArgumentDefinition) *ast.ArgumentDefinition {
		return r.rewriteArgument(ctx, nav, a)
	})
	typ := r.rewriteType(ctx, nav, field.Type)
	directives, directivesChanged := r.rewriteDirectives(ctx, nav, field.Directives)
	nav.Pop()

	res := field
	if argsChanged || directivesChanged || typ != field.Type {
		res = Clone(field)
		res.Arguments = args
		res.Type = typ
		res.Directives = directives
	}

	if r.Field != nil {
		return r.Field(ctx, nav, res)
	}
	return res
}

func (r *Rewriter[C]) rewriteArgument(ctx C, nav *Navigator, arg *ast.ArgumentDefinition) *ast.ArgumentDefinition {
	nav.Push(arg)
	typ := r.rewriteType(ctx, nav, arg.Type)
	directives, directivesChanged := r.rewriteDirectives(ctx, nav, arg.Directives)
	nav.Pop()

	res := arg
	if directivesChanged || typ != arg.Type {
		res = Clone(arg)
		res.Type = typ
		res.Directives = directives
	}

	if r.Argument != nil {
		return r.Argument(ctx, nav, res)
	}
	return res
}

func (r *Rewriter[C]) rewriteEnumValue(ctx C, nav *Navigator, value *ast.EnumValueDefinition) *ast.EnumValueDefinition {
	nav.Push(value)
	directives, directivesChanged := r.rewriteDirectives(ctx, nav, value.Directives)
	nav.Pop()

	res := value
	if directivesChanged {
		res = Clone(value)
		res.Directives = directives
	}

	if r.EnumValue != nil {
		return r.EnumValue(ctx, nav, res)
	}
	return res
}

func (r *Rewriter[C]) rewriteDirectiveDefinition(ctx C, nav *Navigator, def *ast.DirectiveDefinition) *ast.DirectiveDefinition {
	nav.Push(def)
	args, argsChanged := rewriteList(def.Arguments, func(a *ast.ArgumentDefinition) *ast.ArgumentDefinition {
		return r.rewriteArgument(ctx, nav, a)
	})
	nav.Pop()

	res := def
	if argsChanged {
		res = Clone(def)
		res.Arguments = args
	}

	if r.DirectiveDefinition != nil {
		return r.DirectiveDefinition(ctx, nav, res)
	}
	return res
}

func (r *Rewriter[C]) rewriteSchemaDefinition(ctx C, nav *Navigator, def *ast.SchemaDefinition) *ast.SchemaDefinition {
	nav.Push(def)
	directives, directivesChanged := r.rewriteDirectives(ctx, nav, def.Directives)
	ops, opsChanged := rewriteList(def.OperationTypes, func(op *ast.OperationTypeDefinition) *ast.OperationTypeDefinition {
		if r.NamedType == nil {
			return op
		}
		name := r.NamedType(ctx, nav, op.Type)
		if name == op.Type {
			return op
		}
		c := Clone(op)
		c.Type = name
		return c
	})
	nav.Pop()

	if !directivesChanged && !opsChanged {
		return def
	}

	c := Clone(def)
	c.Directives = directives
	c.OperationTypes = ops
	return c
}

func (r *Rewriter[C]) rewriteDirectives(ctx C, nav *Navigator, list ast.DirectiveList) (ast.DirectiveList, bool) {
	if r.Directive == nil {
		return list, false
	}
	return rewriteList(list, func(d *ast.Directive) *ast.Directive {
		return r.Directive(ctx, nav, d)
	})
}

func (r *Rewriter[C]) rewriteType(ctx C, nav *Navigator, t *ast.Type) *ast.Type {
	if t == nil || r.NamedType == nil {
		return t
	}

	if t.Elem != nil {
		elem := r.rewriteType(ctx, nav, t.Elem)
		if elem == t.Elem {
			return t
		}
		c := Clone(t)
		c.Elem = elem
		return c
	}

	name := r.NamedType(ctx, nav, t.NamedType)
	if name == t.NamedType {
		return t
	}
	c := Clone(t)
	c.NamedType = name
	return c
}

func (r *Rewriter[C]) rewriteNames(ctx C, nav *Navigator, names []string) ([]string, bool) {
	if r.NamedType == nil || len(names) == 0 {
		return names, false
	}

	var res []string
	changed := false
	for i, name := range names {
		n := r.NamedType(ctx, nav, name)
		if n != name && !changed {
			changed = true
			res = make([]string, 0, len(names))
			res = append(res, names[:i]...)
		}
		if changed && n != "" {
			res = append(res, n)
		}
	}

	if !changed {
		return names, false
	}
	return res, true
}

// rewriteList applies fn to every element and allocates a new list on the
// first element that changed. A nil result removes the element.
func rewriteList[L ~[]*T, T any](list L, fn func(*T) *T) (L, bool) {
	var res L
	changed := false
	for i, item := range list {
		n := fn(item)
		if n != item && !changed {
			changed = true
			res = make(L, 0, len(list))
			res = append(res, list[:i]...)
		}
		if changed && n != nil {
			res = append(res, n)
		}
	}

	if !changed {
		return list, false
	}
	return res, true
}
