package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func mustParse(t *testing.T, input string) *ast.SchemaDocument {
	t.Helper()

	doc, err := parser.ParseSchema(&ast.Source{Name: "schema", Input: input})
	require.NoError(t, err)
	return doc
}

const testSchema = `
	schema { query: Root }

	directive @tag(name: Foo) on FIELD_DEFINITION

	interface Node { id: ID! }

	type Foo implements Node {
		id: ID!
		bar(arg: Bar): [Bar!]! @tag(name: "x")
	}

	type Bar { name: String }

	union Any = Foo | Bar

	type Root { foo: Foo }

	extend type Bar { other: Foo }
`

func TestRewriterWithoutHooksSharesEverything(t *testing.T) {
	doc := mustParse(t, testSchema)

	var r Rewriter[struct{}]
	assert.Same(t, doc, r.RewriteDocument(struct{}{}, doc))
}

func TestRewriterRenamesNamedTypes(t *testing.T) {
	doc := mustParse(t, testSchema)

	r := Rewriter[map[string]string]{
		NamedType: func(renames map[string]string, _ *Navigator, name string) string {
			if to, ok := renames[name]; ok {
				return to
			}
			return name
		},
	}

	res := r.RewriteDocument(map[string]string{"Bar": "Baz", "Root": "Query"}, doc)
	require.NotSame(t, doc, res)

	foo := res.Definitions.ForName("Foo")
	assert.Equal(t, "[Baz!]!", foo.Fields.ForName("bar").Type.String())
	assert.Equal(t, "Baz", foo.Fields.ForName("bar").Arguments.ForName("arg").Type.String())
	assert.Equal(t, []string{"Foo", "Baz"}, res.Definitions.ForName("Any").Types)
	assert.Equal(t, "Query", res.Schema[0].OperationTypes[0].Type)

	// unaffected subtrees are shared
	assert.Same(t, doc.Definitions.ForName("Node"), res.Definitions.ForName("Node"))
	assert.Same(t, doc.Definitions.ForName("Foo").Fields.ForName("id"), foo.Fields.ForName("id"))
	assert.Same(t, doc.Extensions[0], res.Extensions[0])
	assert.Same(t, doc.Directives[0].Arguments[0].Type, res.Directives[0].Arguments[0].Type)

	// the input document is left as is
	assert.Equal(t, "[Bar!]!", doc.Definitions.ForName("Foo").Fields.ForName("bar").Type.String())
	assert.Equal(t, "Root", doc.Schema[0].OperationTypes[0].Type)
}

func TestRewriterRemovesNodes(t *testing.T) {
	doc := mustParse(t, testSchema)

	r := Rewriter[struct{}]{
		Field: func(_ struct{}, _ *Navigator, field *ast.FieldDefinition) *ast.FieldDefinition {
			if field.Name == "bar" {
				return nil
			}
			return field
		},
		Definition: func(_ struct{}, _ *Navigator, def *ast.Definition) *ast.Definition {
			if def.Kind == ast.Union {
				return nil
			}
			return def
		},
		Directive: func(_ struct{}, _ *Navigator, dir *ast.Directive) *ast.Directive {
			return nil
		},
	}

	res := r.RewriteDocument(struct{}{}, doc)
	assert.Nil(t, res.Definitions.ForName("Any"))
	assert.Nil(t, res.Definitions.ForName("Foo").Fields.ForName("bar"))
	assert.NotNil(t, res.Definitions.ForName("Foo").Fields.ForName("id"))
	assert.Len(t, doc.Definitions.ForName("Foo").Fields, 2)
}

func TestRewriterNavigator(t *testing.T) {
	doc := mustParse(t, testSchema)

	type seen struct {
		owners     map[string]string
		extensions []string
	}
	ctx := &seen{owners: map[string]string{}}

	r := Rewriter[*seen]{
		Field: func(ctx *seen, nav *Navigator, field *ast.FieldDefinition) *ast.FieldDefinition {
			def := nav.Definition()
			ctx.owners[def.Name+"."+field.Name] = def.Name
			if nav.InExtension() {
				ctx.extensions = append(ctx.extensions, field.Name)
			}
			return field
		},
		NamedType: func(ctx *seen, nav *Navigator, name string) string {
			field, inField := Nearest[*ast.FieldDefinition](nav)
			if arg, ok := nav.Parent().(*ast.ArgumentDefinition); ok && inField {
				assert.Equal(t, "arg", arg.Name)
				assert.Equal(t, "bar", field.Name)
			}
			return name
		},
	}

	res := r.RewriteDocument(ctx, doc)
	assert.Same(t, doc, res)
	assert.Equal(t, "Foo", ctx.owners["Foo.bar"])
	assert.Equal(t, []string{"other"}, ctx.extensions)
}

func TestWalker(t *testing.T) {
	doc := mustParse(t, testSchema)

	var names []string
	var directives []string
	var defs []string

	w := Walker[struct{}]{
		EnterDefinition: func(_ struct{}, nav *Navigator, def *ast.Definition) {
			defs = append(defs, def.Name)
		},
		EnterNamedType: func(_ struct{}, nav *Navigator, name string) {
			names = append(names, name)
		},
		EnterDirective: func(_ struct{}, nav *Navigator, dir *ast.Directive) {
			field, _ := Nearest[*ast.FieldDefinition](nav)
			directives = append(directives, dir.Name+"@"+field.Name)
		},
	}
	w.Walk(struct{}{}, doc)

	assert.Equal(t, []string{"Node", "Foo", "Bar", "Any", "Root", "Bar"}, defs)
	assert.Equal(t, []string{"tag@bar"}, directives)
	assert.Equal(t, []string{
		"Root",
		"Foo",
		"ID",
		"Node", "ID", "Bar", "Bar",
		"String",
		"Foo", "Bar",
		"Foo",
		"Foo",
	}, names)
}

func TestNavigator(t *testing.T) {
	nav := &Navigator{}
	assert.Nil(t, nav.Parent())
	assert.Nil(t, nav.Definition())

	def := &ast.Definition{Name: "Foo"}
	field := &ast.FieldDefinition{Name: "bar"}
	nav.Push(def)
	nav.Push(field)

	assert.Same(t, field, nav.Parent())
	assert.Same(t, def, nav.Definition())
	nearest, ok := Nearest[*ast.FieldDefinition](nav)
	assert.True(t, ok)
	assert.Same(t, field, nearest)

	nav.Pop()
	nav.Pop()
	nav.Pop()
	assert.Nil(t, nav.Parent())
}

func TestClone(t *testing.T) {
	def := &ast.Definition{Name: "Foo", Fields: ast.FieldList{{Name: "a"}}}

	assert.Same(t, def, WithDefinitionName(def, "Foo"))

	renamed := WithDefinitionName(def, "Bar")
	assert.Equal(t, "Bar", renamed.Name)
	assert.Equal(t, "Foo", def.Name)
	assert.Same(t, def.Fields[0], renamed.Fields[0])

	assert.Nil(t, Clone[ast.Definition](nil))
}
