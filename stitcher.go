package stitching

import (
	"context"
	"fmt"
	"os"

	"github.com/buildbuildio/stitching/introspection"
	"github.com/buildbuildio/stitching/merger"
	"github.com/buildbuildio/stitching/middleware"
	"github.com/buildbuildio/stitching/schemainfo"

	"github.com/jensneuse/abstractlogger"
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

type sourceKind int

const (
	sdlSource sourceKind = iota
	fileSource
	urlSource
)

// Source is a named schema to stitch
type Source struct {
	Name     string
	kind     sourceKind
	location string
}

// SDLSource is a schema given as SDL text
func SDLSource(name, sdl string) Source {
	return Source{Name: name, kind: sdlSource, location: sdl}
}

// FileSource is a schema read from an SDL file
func FileSource(name, path string) Source {
	return Source{Name: name, kind: fileSource, location: path}
}

// URLSource is a schema introspected from a running GraphQL service
func URLSource(name, url string) Source {
	return Source{Name: name, kind: urlSource, location: url}
}

type Stitcher struct {
	logger                   abstractlogger.Logger
	remoteSchemaIntrospector introspection.RemoteSchemaIntrospector
	middlewares              []middleware.Middleware
	renames                  []middleware.Rename
	rules                    merger.RuleSet
	typeRules                []merger.TypeMergeRule
	typeRewriters            []merger.TypeRewriter
	stripBindings            bool
}

type StitcherOption func(*Stitcher)

func WithLogger(logger abstractlogger.Logger) StitcherOption {
	return func(s *Stitcher) {
		s.logger = logger
	}
}

func WithRemoteSchemaIntrospector(i introspection.RemoteSchemaIntrospector) StitcherOption {
	return func(s *Stitcher) {
		s.remoteSchemaIntrospector = i
	}
}

// WithMiddlewares appends middlewares running after the default pipeline
func WithMiddlewares(middlewares ...middleware.Middleware) StitcherOption {
	return func(s *Stitcher) {
		s.middlewares = append(s.middlewares, middlewares...)
	}
}

func WithRenames(renames ...middleware.Rename) StitcherOption {
	return func(s *Stitcher) {
		s.renames = append(s.renames, renames...)
	}
}

// WithRuleSet replaces the default merge rules
func WithRuleSet(rules merger.RuleSet) StitcherOption {
	return func(s *Stitcher) {
		s.rules = rules
	}
}

// WithTypeMergeRules registers rules running before the rule set
func WithTypeMergeRules(rules ...merger.TypeMergeRule) StitcherOption {
	return func(s *Stitcher) {
		s.typeRules = append(s.typeRules, rules...)
	}
}

// WithoutRootFields drops the named query fields of every source
func WithoutRootFields(fieldNames ...string) StitcherOption {
	return func(s *Stitcher) {
		s.typeRewriters = append(s.typeRewriters, merger.SanitizeRootFields(fieldNames...))
	}
}

func WithTypeRewriters(rewriters ...merger.TypeRewriter) StitcherOption {
	return func(s *Stitcher) {
		s.typeRewriters = append(s.typeRewriters, rewriters...)
	}
}

// WithStripBindings removes the provenance directives from the result
func WithStripBindings() StitcherOption {
	return func(s *Stitcher) {
		s.stripBindings = true
	}
}

func NewStitcher(options ...StitcherOption) *Stitcher {
	s := &Stitcher{
		rules: merger.DefaultRuleSet(),
	}

	for _, optionFunc := range options {
		optionFunc(s)
	}

	if s.logger == nil {
		s.logger = abstractlogger.NoopLogger
	}

	if s.remoteSchemaIntrospector == nil {
		s.remoteSchemaIntrospector = &introspection.ParallelRemoteSchemaIntrospector{
			Factory: introspection.DefaultQueryerFactory,
			Logger:  s.logger,
		}
	}

	return s
}

// Stitch loads sources, runs the middleware pipeline over them and merges
// the results into one document.
func (s *Stitcher) Stitch(ctx context.Context, sources ...Source) (*ast.SchemaDocument, error) {
	docs, err := s.load(ctx, sources)
	if err != nil {
		return nil, err
	}

	infos := make([]*schemainfo.SchemaInfo, len(sources))
	for i, source := range sources {
		info, err := schemainfo.New(source.Name, docs[i])
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", source.Name, err)
		}
		infos[i] = info
	}

	pipeline := append(middleware.DefaultPipeline(s.renames...), s.middlewares...)
	mctx := &middleware.Context{Documents: infos, Logger: s.logger}
	if err := middleware.Run(mctx, pipeline...); err != nil {
		return nil, err
	}

	m := merger.NewSchemaMerger(s.rules, merger.WithLogger(s.logger))
	for _, info := range mctx.Documents {
		if err := m.AddSchema(info.Name, info.Document); err != nil {
			return nil, err
		}
	}
	for _, rule := range s.typeRules {
		if err := m.AddTypeMergeRule(rule); err != nil {
			return nil, err
		}
	}
	for _, rewriter := range s.typeRewriters {
		if err := m.AddTypeRewriter(rewriter); err != nil {
			return nil, err
		}
	}

	res, err := m.Merge()
	if err != nil {
		return nil, err
	}

	s.logger.Info("schemas stitched",
		abstractlogger.Int("sources", len(sources)),
		abstractlogger.Int("types", len(res.Definitions)),
		abstractlogger.Int("directives", len(res.Directives)),
	)

	if s.stripBindings {
		res = middleware.StripBindings(res)
	}

	return res, nil
}

// load returns one document per source, in order. Remote sources are
// introspected together.
func (s *Stitcher) load(ctx context.Context, sources []Source) ([]*ast.SchemaDocument, error) {
	docs := make([]*ast.SchemaDocument, len(sources))

	var remote []int
	for i, source := range sources {
		switch source.kind {
		case urlSource:
			remote = append(remote, i)
		case fileSource:
			content, err := os.ReadFile(source.location)
			if err != nil {
				return nil, fmt.Errorf("schema %s: %w", source.Name, err)
			}
			doc, err := parseSource(source.location, string(content))
			if err != nil {
				return nil, fmt.Errorf("schema %s: %w", source.Name, err)
			}
			docs[i] = doc
		default:
			doc, err := parseSource(source.Name, source.location)
			if err != nil {
				return nil, fmt.Errorf("schema %s: %w", source.Name, err)
			}
			docs[i] = doc
		}
	}

	if len(remote) == 0 {
		return docs, nil
	}

	urls := lo.Map(remote, func(i int, _ int) string { return sources[i].location })
	remoteDocs, err := s.remoteSchemaIntrospector.IntrospectRemoteDocuments(ctx, urls...)
	if err != nil {
		return nil, fmt.Errorf("unable to introspect remote schemas: %w", err)
	}
	if len(remoteDocs) != len(remote) {
		return nil, fmt.Errorf("unable to introspect remote schemas: expected %d documents, got %d", len(remote), len(remoteDocs))
	}

	for j, i := range remote {
		docs[i] = remoteDocs[j]
	}

	return docs, nil
}

func parseSource(name, sdl string) (*ast.SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
