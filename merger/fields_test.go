package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func mustParseType(t *testing.T, input string) *ast.Type {
	t.Helper()

	doc, err := parser.ParseSchema(&ast.Source{Name: "type", Input: "type T { f: " + input + " }"})
	require.NoError(t, err)
	return doc.Definitions[0].Fields[0].Type
}

func TestMergeTypeRefs(t *testing.T) {
	for _, tc := range []struct {
		a, b   string
		output string
		input  string
	}{
		{"String", "String", "String", "String"},
		{"String!", "String", "String", "String!"},
		{"String!", "String!", "String!", "String!"},
		{"[Int!]!", "[Int]", "[Int]", "[Int!]!"},
		{"[[ID!]]", "[[ID]!]", "[[ID]]", "[[ID!]!]"},
	} {
		out, err := mergeTypeRefs(mustParseType(t, tc.a), mustParseType(t, tc.b), false)
		require.NoError(t, err)
		assert.Equal(t, tc.output, out.String(), "%s + %s", tc.a, tc.b)

		in, err := mergeTypeRefs(mustParseType(t, tc.a), mustParseType(t, tc.b), true)
		require.NoError(t, err)
		assert.Equal(t, tc.input, in.String(), "%s + %s", tc.a, tc.b)
	}

	for _, tc := range [][2]string{
		{"String", "Int"},
		{"[String]", "String"},
		{"[[String]]", "[String]"},
	} {
		_, err := mergeTypeRefs(mustParseType(t, tc[0]), mustParseType(t, tc[1]), false)
		assert.Error(t, err, tc)
	}
}

func TestMergeTypeRefsSharesUnchangedTypes(t *testing.T) {
	a := mustParseType(t, "[Int!]")
	res, err := mergeTypeRefs(a, mustParseType(t, "[Int!]"), false)
	require.NoError(t, err)
	assert.Same(t, a, res)
}

func TestCreateSchemaOrder(t *testing.T) {
	ctx := newContext(nil, nil)
	ctx.AddType(&ast.Definition{Kind: ast.Object, Name: "Zeta"})
	ctx.AddType(&ast.Definition{Kind: ast.Object, Name: "Subscription"})
	ctx.AddType(&ast.Definition{Kind: ast.Object, Name: "Alpha"})
	ctx.AddType(&ast.Definition{Kind: ast.Object, Name: "Query"})
	ctx.AddDirective(&ast.DirectiveDefinition{Name: "b"})
	ctx.AddDirective(&ast.DirectiveDefinition{Name: "a"})

	doc := ctx.CreateSchema()
	assert.Equal(t, []string{"Query", "Subscription", "Zeta", "Alpha"}, definitionNames(doc.Definitions))
	assert.Equal(t, "a", doc.Directives[0].Name)
	assert.Equal(t, "b", doc.Directives[1].Name)
	assert.NotNil(t, ctx.Logger())
}
