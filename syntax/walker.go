package syntax

import "github.com/vektah/gqlparser/v2/ast"

// Walker visits a schema document depth-first without changing it.
type Walker[C any] struct {
	EnterDefinition      func(ctx C, nav *Navigator, def *ast.Definition)
	LeaveDefinition      func(ctx C, nav *Navigator, def *ast.Definition)
	EnterField           func(ctx C, nav *Navigator, field *ast.FieldDefinition)
	EnterArgument        func(ctx C, nav *Navigator, arg *ast.ArgumentDefinition)
	EnterEnumValue       func(ctx C, nav *Navigator, value *ast.EnumValueDefinition)
	EnterDirective       func(ctx C, nav *Navigator, dir *ast.Directive)
	EnterDirectiveDef    func(ctx C, nav *Navigator, def *ast.DirectiveDefinition)
	EnterNamedType       func(ctx C, nav *Navigator, name string)
	EnterSchemaOperation func(ctx C, nav *Navigator, op *ast.OperationTypeDefinition)
}

func (w *Walker[C]) Walk(ctx C, doc *ast.SchemaDocument) {
	if doc == nil {
		return
	}

	nav := &Navigator{}
	nav.Push(doc)
	defer nav.Pop()

	for _, list := range []ast.SchemaDefinitionList{doc.Schema, doc.SchemaExtension} {
		for _, def := range list {
			nav.Push(def)
			w.walkDirectives(ctx, nav, def.Directives)
			for _, op := range def.OperationTypes {
				if w.EnterSchemaOperation != nil {
					w.EnterSchemaOperation(ctx, nav, op)
				}
				if w.EnterNamedType != nil {
					w.EnterNamedType(ctx, nav, op.Type)
				}
			}
			nav.Pop()
		}
	}

	for _, def := range doc.Directives {
		if w.EnterDirectiveDef != nil {
			w.EnterDirectiveDef(ctx, nav, def)
		}
		nav.Push(def)
		for _, arg := range def.Arguments {
			w.walkArgument(ctx, nav, arg)
		}
		nav.Pop()
	}

	for _, def := range doc.Definitions {
		w.WalkDefinition(ctx, nav, def)
	}

	nav.inExtension = true
	for _, def := range doc.Extensions {
		w.WalkDefinition(ctx, nav, def)
	}
	nav.inExtension = false
}

// WalkDefinition visits a single type definition. nav may be nil.
func (w *Walker[C]) WalkDefinition(ctx C, nav *Navigator, def *ast.Definition) {
	if nav == nil {
		nav = &Navigator{}
	}

	if w.EnterDefinition != nil {
		w.EnterDefinition(ctx, nav, def)
	}

	nav.Push(def)
	w.walkDirectives(ctx, nav, def.Directives)
	w.walkNames(ctx, nav, def.Interfaces)
	w.walkNames(ctx, nav, def.Types)

	for _, field := range def.Fields {
		if w.EnterField != nil {
			w.EnterField(ctx, nav, field)
		}
		nav.Push(field)
		for _, arg := range field.Arguments {
			w.walkArgument(ctx, nav, arg)
		}
		w.walkType(ctx, nav, field.Type)
		w.walkDirectives(ctx, nav, field.Directives)
		nav.Pop()
	}

	for _, value := range def.EnumValues {
		if w.EnterEnumValue != nil {
			w.EnterEnumValue(ctx, nav, value)
		}
		nav.Push(value)
		w.walkDirectives(ctx, nav, value.Directives)
		nav.Pop()
	}
	nav.Pop()

	if w.LeaveDefinition != nil {
		w.LeaveDefinition(ctx, nav, def)
	}
}

func (w *Walker[C]) walkArgument(ctx C, nav *Navigator, arg *ast.ArgumentDefinition) {
	if w.EnterArgument != nil {
		w.EnterArgument(ctx, nav, arg)
	}
	nav.Push(arg)
	w.walkType(ctx, nav, arg.Type)
	w.walkDirectives(ctx, nav, arg.Directives)
	nav.Pop()
}

func (w *Walker[C]) walkDirectives(ctx C, nav *Navigator, list ast.DirectiveList) {
	if w.EnterDirective == nil {
		return
	}
	for _, dir := range list {
		w.EnterDirective(ctx, nav, dir)
	}
}

func (w *Walker[C]) walkNames(ctx C, nav *Navigator, names []string) {
	if w.EnterNamedType == nil {
		return
	}
	for _, name := range names {
		w.EnterNamedType(ctx, nav, name)
	}
}

func (w *Walker[C]) walkType(ctx C, nav *Navigator, t *ast.Type) {
	if t == nil || w.EnterNamedType == nil {
		return
	}
	w.EnterNamedType(ctx, nav, t.Name())
}
