package merger

import (
	"errors"
	"testing"

	"github.com/buildbuildio/stitching/format"
	"github.com/buildbuildio/stitching/gqlerrors"
	"github.com/buildbuildio/stitching/schemainfo"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

var schemaNames = []string{"a", "b", "c", "d"}

func mustParse(t *testing.T, input string) *ast.SchemaDocument {
	t.Helper()

	doc, err := parser.ParseSchema(&ast.Source{Name: "schema", Input: input})
	require.NoError(t, err)
	return doc
}

func newMerger(t *testing.T, rules RuleSet, inputs ...string) *SchemaMerger {
	t.Helper()

	m := NewSchemaMerger(rules)
	for i, input := range inputs {
		require.NoError(t, m.AddSchema(schemaNames[i], mustParse(t, input)))
	}
	return m
}

func mustMerge(t *testing.T, inputs ...string) *ast.SchemaDocument {
	t.Helper()

	res, err := newMerger(t, DefaultRuleSet(), inputs...).Merge()
	require.NoError(t, err)
	return res
}

func isEqualSchemas(t *testing.T, expected string, actual *ast.SchemaDocument) {
	t.Helper()

	assert.Equal(t,
		format.Document(format.Canonical(mustParse(t, expected))),
		format.Document(format.Canonical(actual)),
	)
}

func TestAddSchemaErrors(t *testing.T) {
	m := NewSchemaMerger(DefaultRuleSet())
	doc := mustParse(t, `type Query { a: String }`)

	require.NoError(t, m.AddSchema("a", doc))

	var duplicate *gqlerrors.DuplicateNameError
	assert.True(t, errors.As(m.AddSchema("a", doc), &duplicate))

	var invalid *gqlerrors.InvalidNameError
	assert.True(t, errors.As(m.AddSchema("not valid", doc), &invalid))
	assert.True(t, errors.As(m.AddSchema("", doc), &invalid))

	var null *gqlerrors.NullArgumentError
	assert.True(t, errors.As(m.AddSchema("b", nil), &null))
	assert.True(t, errors.As(m.AddTypeMergeRule(nil), &null))
	assert.True(t, errors.As(m.AddDirectiveMergeRule(nil), &null))
	assert.True(t, errors.As(m.AddTypeRewriter(nil), &null))
	assert.True(t, errors.As(m.AddDocumentRewriter(nil), &null))
}

func TestMergeSingleSchema(t *testing.T) {
	res := mustMerge(t, `
		interface Node {
			id: ID!
		}

		input HumanInput {
			name: String!
		}

		type Human implements Node {
			id: ID!
			name: String!
		}

		type Query {
			getHuman(id: ID!): Human!
			node(id: ID!): Node
		}

		type Mutation {
			saveHuman(input: HumanInput!): Human!
		}
	`)

	isEqualSchemas(t, `
		interface Node @_hc_bind(to: "a", as: "Node") {
			id: ID!
		}

		input HumanInput @_hc_bind(to: "a", as: "HumanInput") {
			name: String!
		}

		type Human implements Node @_hc_bind(to: "a", as: "Human") {
			id: ID!
			name: String!
		}

		type Query @_hc_bind(to: "a", as: "Query") {
			getHuman(id: ID!): Human!
			node(id: ID!): Node
		}

		type Mutation @_hc_bind(to: "a", as: "Mutation") {
			saveHuman(input: HumanInput!): Human!
		}
	`, res)

	// root types come first, in operation order
	assert.Equal(t, "Query", res.Definitions[0].Name)
	assert.Equal(t, "Mutation", res.Definitions[1].Name)
}

func TestMergeTwoSchemas(t *testing.T) {
	res := mustMerge(t, `
		interface Node {
			"Node description"
			id: ID!
		}

		"First description"
		type Human implements Node {
			id: ID!
			age: Int!
		}

		type Query {
			human(id: ID!): Human!
		}
	`, `
		directive @someDirective on FIELD_DEFINITION

		interface Node {
			id: ID!
		}

		"Second description"
		type Human implements Node {
			id: ID!
			name: String! @someDirective
		}

		type Query {
			humans: [Human!]!
		}
	`)

	isEqualSchemas(t, `
		directive @someDirective on FIELD_DEFINITION

		interface Node @_hc_bind(to: "a", as: "Node") @_hc_bind(to: "b", as: "Node") {
			"Node description"
			id: ID!
		}

		"First description"
		type Human implements Node @_hc_bind(to: "a", as: "Human") @_hc_bind(to: "b", as: "Human") {
			id: ID!
			age: Int!
			name: String! @someDirective
		}

		type Query @_hc_bind(to: "a", as: "Query") @_hc_bind(to: "b", as: "Query") {
			human(id: ID!): Human!
			humans: [Human!]!
		}
	`, res)

	human := res.Definitions.ForName("Human")
	assert.Equal(t, []string{"id", "age", "name"}, fieldNames(human))
}

func fieldNames(def *ast.Definition) []string {
	names := make([]string, 0, len(def.Fields))
	for _, f := range def.Fields {
		names = append(names, f.Name)
	}
	return names
}

func TestMergeNullability(t *testing.T) {
	res := mustMerge(t, `
		type Foo { x: String! y: [Int!]! z(a: Int): Int }
		input In { p: Int q: Int! }
		type Query { foo(in: In): Foo }
	`, `
		type Foo { x: String y: [Int]! z(a: Int!, b: Int): Int }
		input In { p: Int! q: Int r: [String] }
		type Query { other: Foo }
	`)

	foo := res.Definitions.ForName("Foo")
	assert.Equal(t, "String", foo.Fields.ForName("x").Type.String())
	assert.Equal(t, "[Int]!", foo.Fields.ForName("y").Type.String())

	z := foo.Fields.ForName("z")
	require.Len(t, z.Arguments, 2)
	assert.Equal(t, "Int!", z.Arguments.ForName("a").Type.String())
	assert.Equal(t, "Int", z.Arguments.ForName("b").Type.String())

	in := res.Definitions.ForName("In")
	assert.Equal(t, "Int!", in.Fields.ForName("p").Type.String())
	assert.Equal(t, "Int!", in.Fields.ForName("q").Type.String())
	assert.Equal(t, "[String]", in.Fields.ForName("r").Type.String())
}

func TestMergeFieldConflicts(t *testing.T) {
	for _, inputs := range [][]string{
		{`type Foo { x: String }`, `type Foo { x: Int }`},
		{`type Foo { x: [String] }`, `type Foo { x: String }`},
		{`input Foo { x: [[String]] }`, `input Foo { x: [String] }`},
		{`interface Foo { x(a: Int): String }`, `interface Foo { x(a: String): String }`},
	} {
		_, err := newMerger(t, DefaultRuleSet(), inputs...).Merge()

		var mergeErr *gqlerrors.SchemaMergeError
		require.True(t, errors.As(err, &mergeErr), inputs)
		assert.Equal(t, "Foo", mergeErr.Left.Name)
		assert.Equal(t, "Foo", mergeErr.Right.Name)
		assert.Equal(t, gqlerrors.SchemaMergeConflictCode, gqlerrors.FormatError(err)[0].Code())
	}
}

func TestMergeValidatesSingleDefinitions(t *testing.T) {
	for _, input := range []string{
		`type Foo`,
		`type Query { a: String a: Int }`,
		`input Filter`,
	} {
		_, err := newMerger(t, DefaultRuleSet(), input).Merge()

		var mergeErr *gqlerrors.SchemaMergeError
		assert.True(t, errors.As(err, &mergeErr), input)
	}
}

func TestMergeRootFieldCollision(t *testing.T) {
	res := mustMerge(t, `
		type Query { user: User version: String }
		type User { id: ID }
	`, `
		type Query { user: User }
	`, `
		type Query { user: User version: String }
	`)

	isEqualSchemas(t, `
		type Query
			@_hc_bind(to: "a", as: "Query")
			@_hc_bind(to: "b", as: "Query")
			@_hc_bind(to: "c", as: "Query") {
			user: User
			version: String
			b_user: User @_hc_bind(to: "b", as: "user")
			c_user: User @_hc_bind(to: "c", as: "user")
			c_version: String @_hc_bind(to: "c", as: "version")
		}

		type User @_hc_bind(to: "a", as: "User") { id: ID }
	`, res)
}

func TestMergeRootTypesWithCustomNames(t *testing.T) {
	res := mustMerge(t, `
		schema { query: RootQuery mutation: RootMutation }
		type RootQuery { self: RootQuery name: String }
		type RootMutation { touch: RootQuery }
	`, `
		type Query { other: String }
	`)

	isEqualSchemas(t, `
		type Query @_hc_bind(to: "a", as: "RootQuery") @_hc_bind(to: "b", as: "Query") {
			self: Query
			name: String
			other: String
		}

		type Mutation @_hc_bind(to: "a", as: "RootMutation") {
			touch: Query
		}
	`, res)
	assert.Empty(t, res.Schema)
}

func TestMergeEnumsUnionsInterfaces(t *testing.T) {
	res := mustMerge(t, `
		enum Color { RED GREEN }
		union Pet = Cat
		interface Named { name: String }
		type Cat implements Named { name: String }
		type Dog { name: String }
	`, `
		enum Color { GREEN BLUE }
		union Pet = Dog | Cat
		interface Aged { age: Int }
		type Cat implements Aged { age: Int }
		type Dog { name: String }
	`)

	color := res.Definitions.ForName("Color")
	assert.Len(t, color.EnumValues, 3)
	assert.Equal(t, "RED", color.EnumValues[0].Name)
	assert.Equal(t, "GREEN", color.EnumValues[1].Name)
	assert.Equal(t, "BLUE", color.EnumValues[2].Name)

	assert.Equal(t, []string{"Cat", "Dog"}, res.Definitions.ForName("Pet").Types)
	assert.Equal(t, []string{"Named", "Aged"}, res.Definitions.ForName("Cat").Interfaces)
	assert.Equal(t, []string{"name", "age"}, fieldNames(res.Definitions.ForName("Cat")))
}

func TestMergeDirectives(t *testing.T) {
	res := mustMerge(t, `
		directive @tag(name: String) on FIELD_DEFINITION
		type Query { a: String @tag(name: "x") }
	`, `
		directive @tag(name: String!, weight: Int) repeatable on FIELD_DEFINITION | OBJECT
		type Query { b: String @tag(name: "y") }
	`)

	require.Len(t, res.Directives, 1)
	tag := res.Directives[0]
	assert.Equal(t, "tag", tag.Name)
	assert.True(t, tag.IsRepeatable)
	assert.Equal(t, []ast.DirectiveLocation{ast.LocationFieldDefinition, ast.LocationObject}, tag.Locations)
	require.Len(t, tag.Arguments, 2)
	assert.Equal(t, "String!", tag.Arguments.ForName("name").Type.String())
	assert.Equal(t, "Int", tag.Arguments.ForName("weight").Type.String())
}

func TestMergeRuleExhausted(t *testing.T) {
	_, err := newMerger(t, RuleSet{}, `type Query { a: String }`).Merge()

	var exhausted *gqlerrors.MergeRuleExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.False(t, exhausted.Directive)
	assert.Equal(t, "the type definitions could not be handled: Query", err.Error())

	// heterogeneous groups are not consumed by any default handler
	_, err = newMerger(t, DefaultRuleSet(), `type Foo { a: String }`, `enum Foo { A }`).Merge()
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, "Foo", exhausted.Name)

	_, err = newMerger(t, RuleSet{Types: DefaultRuleSet().Types}, `
		directive @tag on FIELD_DEFINITION
		type Query { a: String @tag }
	`).Merge()
	require.True(t, errors.As(err, &exhausted))
	assert.True(t, exhausted.Directive)
	assert.Equal(t, "the directive definitions could not be handled: tag", err.Error())
	assert.Equal(t, gqlerrors.MergeRuleExhaustedCode, gqlerrors.FormatError(err)[0].Code())
}

func TestCustomRulesRunFirstInRegistrationOrder(t *testing.T) {
	m := newMerger(t, DefaultRuleSet(), `
		scalar Money
		type Query { price: Money }
	`, `
		scalar Money @specifiedBy(url: "https://example.com/money")
		type Query { cost: Money }
	`)

	var calls []string
	record := func(name string) TypeMergeRuleFactory {
		return func(next MergeTypeDelegate) MergeTypeDelegate {
			return func(ctx *Context, group []schemainfo.TypeInfo) error {
				calls = append(calls, name+":"+group[0].Definition().Name)
				return next(ctx, group)
			}
		}
	}
	lastWins := TypeMergeRuleFactory(func(next MergeTypeDelegate) MergeTypeDelegate {
		return func(ctx *Context, group []schemainfo.TypeInfo) error {
			if group[0].Definition().Name != "Money" {
				return next(ctx, group)
			}
			ctx.AddType(group[len(group)-1].Definition())
			return nil
		}
	})

	require.NoError(t, m.AddTypeMergeRule(record("first")))
	require.NoError(t, m.AddTypeMergeRule(record("second")))
	require.NoError(t, m.AddTypeMergeRule(lastWins))

	res, err := m.Merge()
	require.NoError(t, err)

	assert.Equal(t, []string{"first:Query", "second:Query", "first:Money", "second:Money"}, calls)

	money := res.Definitions.ForName("Money")
	require.NotNil(t, money)
	assert.NotNil(t, money.Directives.ForName("specifiedBy"))
	assert.Len(t, money.Directives.ForNames("_hc_bind"), 1)
}

func TestCustomDirectiveRule(t *testing.T) {
	m := newMerger(t, RuleSet{}, `
		directive @tag on FIELD_DEFINITION
		type Query { a: String }
	`)
	require.NoError(t, m.AddTypeMergeRule(TypeMergeRuleFactory(func(next MergeTypeDelegate) MergeTypeDelegate {
		return func(ctx *Context, group []schemainfo.TypeInfo) error {
			ctx.AddType(group[0].Definition())
			return nil
		}
	})))
	require.NoError(t, m.AddDirectiveMergeRule(DirectiveMergeRuleFactory(func(next MergeDirectiveDelegate) MergeDirectiveDelegate {
		return func(ctx *Context, group []*schemainfo.DirectiveTypeInfo) error {
			return nil
		}
	})))

	res, err := m.Merge()
	require.NoError(t, err)
	assert.Empty(t, res.Directives)
	assert.NotNil(t, res.Definitions.ForName("Query"))
}

func TestMergeIsDeterministic(t *testing.T) {
	inputs := []string{`
		enum Zeta { A }
		type Query { a: Alpha z: Zeta }
		type Alpha { id: ID }
		directive @b on FIELD_DEFINITION
		directive @a on FIELD_DEFINITION
	`, `
		type Beta { id: ID }
		type Alpha { name: String }
		type Query { b: Beta }
	`}

	m := newMerger(t, DefaultRuleSet(), inputs...)
	first, err := m.Merge()
	require.NoError(t, err)
	second, err := m.Merge()
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second, cmpopts.IgnoreTypes(&ast.Position{})))
	assert.Equal(t, format.Document(first), format.Document(second))

	names := definitionNames(first.Definitions)
	assert.Equal(t, []string{"Query", "Alpha", "Beta", "Zeta"}, names)
	assert.Equal(t, "a", first.Directives[0].Name)
	assert.Equal(t, "b", first.Directives[1].Name)
}

func definitionNames(defs ast.DefinitionList) []string {
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}

func TestMergeDoesNotChangeInputs(t *testing.T) {
	a := mustParse(t, `type Query { user: User } type User { id: ID }`)
	b := mustParse(t, `type Query { user: User }`)
	before := format.Document(a) + format.Document(b)

	m := NewSchemaMerger(DefaultRuleSet())
	require.NoError(t, m.AddSchema("a", a))
	require.NoError(t, m.AddSchema("b", b))
	_, err := m.Merge()
	require.NoError(t, err)

	assert.Equal(t, before, format.Document(a)+format.Document(b))
}

func TestMergeDropsIntrospectionTypes(t *testing.T) {
	res := mustMerge(t, `
		type __Internal { a: String }
		type Query { a: String }
	`)
	assert.Nil(t, res.Definitions.ForName("__Internal"))
}

func TestMergeUnresolvedReferences(t *testing.T) {
	_, err := newMerger(t, DefaultRuleSet(), `
		type Query {
			foo: Missing @unknown
			bar: String @deprecated
			baz: ID @_hc_bind(to: "a", as: "baz")
		}
	`).Merge()

	var unresolved *gqlerrors.UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{"Missing"}, unresolved.Types)
	assert.Equal(t, []string{"unknown"}, unresolved.Directives)
}

func TestMergeKeepsOrphanExtensions(t *testing.T) {
	res := mustMerge(t, `
		type User { id: ID }
		type Query { user: User }
	`, `
		extend type User { name: String }
	`)

	require.Len(t, res.Extensions, 1)
	assert.Equal(t, "User", res.Extensions[0].Name)

	_, err := newMerger(t, DefaultRuleSet(), `type Query { a: String }`, `extend type Nowhere { a: String }`).Merge()
	var unresolved *gqlerrors.UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{"Nowhere"}, unresolved.Types)
}

func TestTypeRewriter(t *testing.T) {
	m := newMerger(t, DefaultRuleSet(), `
		type Query { foo: Foo }
		type Foo { id: ID }
	`, `
		type Query { bar: Foo }
		type Foo { name: String }
	`)
	require.NoError(t, m.AddTypeRewriter(func(schema *schemainfo.SchemaInfo, def *ast.Definition) *ast.Definition {
		if schema.Name == "a" && def.Name == "Foo" {
			return syntax.WithDefinitionName(def, "AFoo")
		}
		return def
	}))

	res, err := m.Merge()
	require.NoError(t, err)

	isEqualSchemas(t, `
		type Query @_hc_bind(to: "a", as: "Query") @_hc_bind(to: "b", as: "Query") {
			foo: AFoo
			bar: Foo
		}
		type AFoo @_hc_bind(to: "a", as: "Foo") { id: ID }
		type Foo @_hc_bind(to: "b", as: "Foo") { name: String }
	`, res)
}

func TestTypeRewriterDropsTypes(t *testing.T) {
	m := newMerger(t, DefaultRuleSet(), `
		type Query { a: String }
		type Unused { id: ID }
	`)
	require.NoError(t, m.AddTypeRewriter(func(_ *schemainfo.SchemaInfo, def *ast.Definition) *ast.Definition {
		if def.Name == "Unused" {
			return nil
		}
		return def
	}))

	res, err := m.Merge()
	require.NoError(t, err)
	assert.Nil(t, res.Definitions.ForName("Unused"))
}

func TestDocumentRewriter(t *testing.T) {
	m := newMerger(t, DefaultRuleSet(), `type Query { a: String }`, `type Query { b: String }`)

	var seen []string
	require.NoError(t, m.AddDocumentRewriter(func(schema *schemainfo.SchemaInfo, doc *ast.SchemaDocument) *ast.SchemaDocument {
		seen = append(seen, schema.Name)
		return doc
	}))

	_, err := m.Merge()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)

	require.NoError(t, m.AddDocumentRewriter(func(*schemainfo.SchemaInfo, *ast.SchemaDocument) *ast.SchemaDocument {
		return nil
	}))
	_, err = m.Merge()
	var null *gqlerrors.NullArgumentError
	assert.True(t, errors.As(err, &null))
}

func TestSanitizeRootFields(t *testing.T) {
	m := newMerger(t, DefaultRuleSet(), `
		interface Node { id: ID! }
		type Query { node(id: ID!): Node a: String }
	`, `
		interface Node { id: ID! }
		type Query { node(id: ID!): Node b: String }
		type Other { node: String }
	`)
	require.NoError(t, m.AddTypeRewriter(SanitizeRootFields("node")))

	res, err := m.Merge()
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, fieldNames(res.Definitions.ForName("Query")))
	assert.Equal(t, []string{"node"}, fieldNames(res.Definitions.ForName("Other")))
	assert.NotNil(t, res.Definitions.ForName("Node"))
}

func TestMergeRenamedInterfaceFieldKeepsOtherSources(t *testing.T) {
	res := mustMerge(t, `
		interface I { xyz: String @_hc_bind(to: "a", as: "abc") }
		type Foo implements I { xyz: String @_hc_bind(to: "a", as: "abc") }
		type Query { foo: Foo }
	`, `
		interface I { abc: String }
		type Bar implements I { abc: String }
		type Query { bar: Bar }
	`)

	isEqualSchemas(t, `
		interface I @_hc_bind(to: "a", as: "I") @_hc_bind(to: "b", as: "I") {
			xyz: String @_hc_bind(to: "a", as: "abc")
			abc: String
		}

		type Foo implements I @_hc_bind(to: "a", as: "Foo") {
			xyz: String @_hc_bind(to: "a", as: "abc")
		}

		type Bar implements I @_hc_bind(to: "b", as: "Bar") {
			abc: String
		}

		type Query @_hc_bind(to: "a", as: "Query") @_hc_bind(to: "b", as: "Query") {
			foo: Foo
			bar: Bar
		}
	`, res)
}

func TestCheckDuplicates(t *testing.T) {
	var mergeErr *gqlerrors.SchemaMergeError

	err := checkDuplicates(mustParse(t, `type Foo { a: String } type Foo { b: String }`))
	require.True(t, errors.As(err, &mergeErr))
	assert.Equal(t, "the type Foo is defined more than once in the merged schema", mergeErr.Message)

	err = checkDuplicates(mustParse(t, `interface I { xyz: String xyz: Int }`))
	require.True(t, errors.As(err, &mergeErr))
	assert.Equal(t, "the member I.xyz is defined more than once in the merged schema", mergeErr.Message)

	err = checkDuplicates(mustParse(t, `enum E { A B A }`))
	require.True(t, errors.As(err, &mergeErr))
	assert.Equal(t, "the member E.A is defined more than once in the merged schema", mergeErr.Message)

	assert.NoError(t, checkDuplicates(mustParse(t, `type Foo { a: String } enum E { A B }`)))
}
