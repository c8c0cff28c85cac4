package merger

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/gqlerrors"
	"github.com/buildbuildio/stitching/references"
	"github.com/buildbuildio/stitching/schemainfo"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/jensneuse/abstractlogger"
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

// TypeRewriter transforms one type definition of a source before merge.
// Returning nil drops the type.
type TypeRewriter func(schema *schemainfo.SchemaInfo, def *ast.Definition) *ast.Definition

// DocumentRewriter transforms a whole source document before merge
type DocumentRewriter func(schema *schemainfo.SchemaInfo, doc *ast.SchemaDocument) *ast.SchemaDocument

// Option configures a SchemaMerger
type Option func(*SchemaMerger)

func WithLogger(logger abstractlogger.Logger) Option {
	return func(m *SchemaMerger) {
		m.logger = logger
	}
}

// SchemaMerger merges the registered source documents into one document.
// Registrations are kept as given; every Merge call starts from them again.
type SchemaMerger struct {
	rules          RuleSet
	typeRules      []TypeMergeRule
	directiveRules []DirectiveMergeRule
	rewriters      []DocumentRewriter

	names     []string
	documents map[string]*ast.SchemaDocument

	logger abstractlogger.Logger
}

// NewSchemaMerger returns a merger running rules after the custom rules
func NewSchemaMerger(rules RuleSet, opts ...Option) *SchemaMerger {
	m := &SchemaMerger{
		rules:     rules,
		documents: make(map[string]*ast.SchemaDocument),
		logger:    abstractlogger.NoopLogger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SchemaMerger) AddSchema(name string, doc *ast.SchemaDocument) error {
	if !common.IsValidName(name) {
		return &gqlerrors.InvalidNameError{Argument: "schema name", Name: name}
	}
	if doc == nil {
		return &gqlerrors.NullArgumentError{Argument: "document"}
	}
	if _, ok := m.documents[name]; ok {
		return &gqlerrors.DuplicateNameError{Name: name}
	}

	m.names = append(m.names, name)
	m.documents[name] = doc
	return nil
}

// AddTypeMergeRule registers a rule running before the rule set. Custom
// rules run in registration order.
func (m *SchemaMerger) AddTypeMergeRule(rule TypeMergeRule) error {
	if rule == nil {
		return &gqlerrors.NullArgumentError{Argument: "rule"}
	}
	m.typeRules = append(m.typeRules, rule)
	return nil
}

func (m *SchemaMerger) AddDirectiveMergeRule(rule DirectiveMergeRule) error {
	if rule == nil {
		return &gqlerrors.NullArgumentError{Argument: "rule"}
	}
	m.directiveRules = append(m.directiveRules, rule)
	return nil
}

// AddTypeRewriter registers a rewriter applied to every type of every source
func (m *SchemaMerger) AddTypeRewriter(rewriter TypeRewriter) error {
	if rewriter == nil {
		return &gqlerrors.NullArgumentError{Argument: "rewriter"}
	}
	m.rewriters = append(m.rewriters, func(schema *schemainfo.SchemaInfo, doc *ast.SchemaDocument) *ast.SchemaDocument {
		defs, changed := rewriteDefinitions(doc.Definitions, func(def *ast.Definition) *ast.Definition {
			return rewriter(schema, def)
		})
		if !changed {
			return doc
		}
		return syntax.WithDefinitions(doc, defs)
	})
	return nil
}

func (m *SchemaMerger) AddDocumentRewriter(rewriter DocumentRewriter) error {
	if rewriter == nil {
		return &gqlerrors.NullArgumentError{Argument: "rewriter"}
	}
	m.rewriters = append(m.rewriters, rewriter)
	return nil
}

func rewriteDefinitions(defs ast.DefinitionList, fn func(*ast.Definition) *ast.Definition) (ast.DefinitionList, bool) {
	res := make(ast.DefinitionList, 0, len(defs))
	changed := false
	for _, def := range defs {
		n := fn(def)
		if n != def {
			changed = true
		}
		if n != nil {
			res = append(res, n)
		}
	}
	return res, changed
}

// Merge runs the whole merge. Types are merged root types first, then by
// name in lexical order, then directives by name, so the same registrations
// always produce the same document and report the same first error.
func (m *SchemaMerger) Merge() (*ast.SchemaDocument, error) {
	schemas, err := m.qualifiedSchemas()
	if err != nil {
		return nil, err
	}

	schemas, err = m.rewriteSchemas(schemas)
	if err != nil {
		return nil, err
	}

	mergeTypes := compileTypeRules(append(append([]TypeMergeRule{}, m.typeRules...), m.rules.Types...))
	mergeDirectives := compileDirectiveRules(append(append([]DirectiveMergeRule{}, m.directiveRules...), m.rules.Directives...))

	ctx := newContext(schemas, m.logger)

	for _, op := range common.RootOperations {
		var group []schemainfo.TypeInfo
		for _, s := range schemas {
			if def := s.GetRootType(op); def != nil {
				group = append(group, schemainfo.NewTypeInfo(def, s))
			}
		}
		if len(group) == 0 {
			continue
		}
		if err := mergeTypes(ctx, group); err != nil {
			return nil, err
		}
	}

	for _, name := range typeNames(schemas) {
		var group []schemainfo.TypeInfo
		for _, s := range schemas {
			if def, ok := s.Types[name]; ok && !s.IsRootType(def) {
				group = append(group, schemainfo.NewTypeInfo(def, s))
			}
		}
		if len(group) == 0 {
			continue
		}
		if err := mergeTypes(ctx, group); err != nil {
			return nil, err
		}
	}

	for _, name := range directiveNames(schemas) {
		var group []*schemainfo.DirectiveTypeInfo
		for _, s := range schemas {
			if def, ok := s.Directives[name]; ok {
				group = append(group, &schemainfo.DirectiveTypeInfo{Definition: def, Schema: s})
			}
		}
		if err := mergeDirectives(ctx, group); err != nil {
			return nil, err
		}
	}

	doc := ctx.CreateSchema()
	for _, s := range schemas {
		doc, err = references.RewriteSchema(doc, s.Name)
		if err != nil {
			return nil, err
		}
	}

	if err := checkDuplicates(doc); err != nil {
		return nil, err
	}

	if err := VerifyReferences(doc); err != nil {
		return nil, err
	}

	m.logger.Debug("schemas merged",
		abstractlogger.Int("schemas", len(schemas)),
		abstractlogger.Int("types", len(doc.Definitions)),
		abstractlogger.Int("directives", len(doc.Directives)),
	)
	return doc, nil
}

// qualifiedSchemas drops introspection types and binds every remaining type
// to the source it comes from.
func (m *SchemaMerger) qualifiedSchemas() ([]*schemainfo.SchemaInfo, error) {
	schemas := make([]*schemainfo.SchemaInfo, 0, len(m.names))
	for _, name := range m.names {
		doc := m.documents[name]

		defs, _ := rewriteDefinitions(doc.Definitions, func(def *ast.Definition) *ast.Definition {
			if common.IsBuiltinName(def.Name) {
				return nil
			}
			return syntax.WithDefinitionDirectives(def, directives.EnsureBind(def.Directives, name, def.Name))
		})

		s, err := schemainfo.New(name, syntax.WithDefinitions(doc, defs))
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// rewriteSchemas applies the registered rewriters in registration order. A
// document a rewriter changed gets its references re-pointed right away.
func (m *SchemaMerger) rewriteSchemas(schemas []*schemainfo.SchemaInfo) ([]*schemainfo.SchemaInfo, error) {
	if len(m.rewriters) == 0 {
		return schemas, nil
	}

	res := make([]*schemainfo.SchemaInfo, 0, len(schemas))
	for _, s := range schemas {
		doc := s.Document
		for _, rewriter := range m.rewriters {
			doc = rewriter(s, doc)
			if doc == nil {
				return nil, &gqlerrors.NullArgumentError{Argument: "rewritten document"}
			}
		}

		if doc != s.Document {
			var err error
			if doc, err = references.RewriteSchema(doc, s.Name); err != nil {
				return nil, err
			}
		}

		rewritten, err := s.WithDocument(doc)
		if err != nil {
			return nil, err
		}
		res = append(res, rewritten)
	}
	return res, nil
}

func typeNames(schemas []*schemainfo.SchemaInfo) []string {
	names := lo.FlatMap(schemas, func(s *schemainfo.SchemaInfo, _ int) []string {
		return s.SortedTypeNames()
	})
	return sortedUniq(names)
}

func directiveNames(schemas []*schemainfo.SchemaInfo) []string {
	names := lo.FlatMap(schemas, func(s *schemainfo.SchemaInfo, _ int) []string {
		return s.SortedDirectiveNames()
	})
	return sortedUniq(names)
}

func sortedUniq(names []string) []string {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return common.SortedKeys(set)
}

func checkDuplicates(doc *ast.SchemaDocument) error {
	seen := make(map[string]*ast.Definition, len(doc.Definitions))
	for _, def := range doc.Definitions {
		if existing, ok := seen[def.Name]; ok {
			return gqlerrors.NewSchemaMergeError(existing, def,
				"the type %s is defined more than once in the merged schema", def.Name)
		}
		seen[def.Name] = def

		if name, ok := duplicateMember(def); ok {
			return gqlerrors.NewSchemaMergeError(def, def,
				"the member %s.%s is defined more than once in the merged schema", def.Name, name)
		}
	}
	return nil
}

// duplicateMember returns the first field or enum value name def declares twice
func duplicateMember(def *ast.Definition) (string, bool) {
	if dups := lo.FindDuplicatesBy(def.Fields, func(f *ast.FieldDefinition) string { return f.Name }); len(dups) > 0 {
		return dups[0].Name, true
	}
	if dups := lo.FindDuplicatesBy(def.EnumValues, func(v *ast.EnumValueDefinition) string { return v.Name }); len(dups) > 0 {
		return dups[0].Name, true
	}
	return "", false
}
