package syntax

import "github.com/vektah/gqlparser/v2/ast"

// Clone returns a shallow copy of node. Children are shared with the original.
func Clone[T any](node *T) *T {
	if node == nil {
		return nil
	}
	c := *node
	return &c
}

func WithDefinitionName(def *ast.Definition, name string) *ast.Definition {
	if def.Name == name {
		return def
	}
	c := Clone(def)
	c.Name = name
	return c
}

func WithFieldName(field *ast.FieldDefinition, name string) *ast.FieldDefinition {
	if field.Name == name {
		return field
	}
	c := Clone(field)
	c.Name = name
	return c
}

func WithDefinitionDirectives(def *ast.Definition, directives ast.DirectiveList) *ast.Definition {
	c := Clone(def)
	c.Directives = directives
	return c
}

func WithFieldDirectives(field *ast.FieldDefinition, directives ast.DirectiveList) *ast.FieldDefinition {
	c := Clone(field)
	c.Directives = directives
	return c
}

func WithFields(def *ast.Definition, fields ast.FieldList) *ast.Definition {
	c := Clone(def)
	c.Fields = fields
	return c
}

// WithDefinitions returns a copy of doc holding the given type definitions
func WithDefinitions(doc *ast.SchemaDocument, defs ast.DefinitionList) *ast.SchemaDocument {
	c := Clone(doc)
	c.Definitions = defs
	return c
}
