package format

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

func TestNewBufferedFormatter(t *testing.T) {
	doc := mustParse(t, `type Query { node(id: ID!): String }`)

	tf := NewBufferedFormatter()

	tf.WithIndent("XXX")

	res := tf.FormatSchemaDocument(doc)

	assert.Contains(t, res, "XXX")

	tf.WithNewLine("YYY")

	res = tf.FormatSchemaDocument(doc)

	assert.Contains(t, res, "YYY")

	newTf := tf.Copy()

	newTf.WithIndent("")

	assert.NotEqual(t, tf.indent, newTf.indent)
}

func TestDocument(t *testing.T) {
	doc := mustParse(t, `
		type Query {
			node(id: ID!): Node @deprecated(reason: "use nodes")
		}
		interface Node { id: ID! }
	`)

	assert.Equal(t, "type Query {\n\tnode(id: ID!): Node @deprecated(reason: \"use nodes\")\n}\ninterface Node {\n\tid: ID!\n}\n", Document(doc))
	assert.Equal(t, `type Query { node(id: ID!): Node @deprecated(reason: "use nodes") } interface Node { id: ID! }`, DebugDocument(doc))
}

func TestCanonical(t *testing.T) {
	a := mustParse(t, `
		type Query { b: String a(y: Int, x: Int): String }
		enum Color { RED BLUE }
		union Pet = Dog | Cat
		type Cat { name: String }
		type Dog implements Named & Animal @b @a { name: String }
	`)
	b := mustParse(t, `
		type Dog implements Animal & Named @a @b { name: String }
		type Cat { name: String }
		union Pet = Cat | Dog
		enum Color { BLUE RED }
		type Query { a(x: Int, y: Int): String b: String }
	`)

	assert.NotEqual(t, Document(a), Document(b))
	assert.Equal(t, Document(Canonical(a)), Document(Canonical(b)))
	assert.Equal(t,
		`type Cat { name: String } enum Color { BLUE RED } type Dog implements Animal & Named @a @b { name: String } union Pet = Cat | Dog type Query { a(x: Int, y: Int): String b: String }`,
		DebugDocument(Canonical(a)),
	)

	// the input is left as is
	assert.Equal(t, "b", a.Definitions.ForName("Query").Fields[0].Name)
	assert.Nil(t, Canonical(nil))
}

func TestCanonicalOrdersRepeatedDirectives(t *testing.T) {
	a := mustParse(t, `type Foo @_hc_bind(to: "b", as: "Foo") @_hc_bind(to: "a", as: "Foo") { id: ID }`)
	b := mustParse(t, `type Foo @_hc_bind(to: "a", as: "Foo") @_hc_bind(to: "b", as: "Foo") { id: ID }`)

	assert.Equal(t, Document(Canonical(a)), Document(Canonical(b)))
}
