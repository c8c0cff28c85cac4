package middleware

import (
	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/schemainfo"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

type cleanupOptions struct {
	stripBindings bool
}

// CleanupOption configures ApplyCleanup
type CleanupOption func(*cleanupOptions)

// WithStripBindings removes the provenance directives as well
func WithStripBindings() CleanupOption {
	return func(o *cleanupOptions) {
		o.stripBindings = true
	}
}

func (o *cleanupOptions) names() []string {
	if o.stripBindings {
		return []string{directives.RenameDirectiveName, directives.RemoveDirectiveName, directives.BindDirectiveName}
	}
	return []string{directives.RenameDirectiveName, directives.RemoveDirectiveName}
}

func cleanupRewriter(names []string) *syntax.Rewriter[struct{}] {
	return &syntax.Rewriter[struct{}]{
		Directive: func(_ struct{}, _ *syntax.Navigator, dir *ast.Directive) *ast.Directive {
			if lo.Contains(names, dir.Name) {
				return nil
			}
			return dir
		},
		DirectiveDefinition: func(_ struct{}, _ *syntax.Navigator, def *ast.DirectiveDefinition) *ast.DirectiveDefinition {
			if lo.Contains(names, def.Name) {
				return nil
			}
			return def
		},
	}
}

// ApplyCleanup removes the leftover @rename and @remove usages together with
// their declarations.
func ApplyCleanup(opts ...CleanupOption) Middleware {
	options := &cleanupOptions{}
	for _, opt := range opts {
		opt(options)
	}
	rewriter := cleanupRewriter(options.names())

	return documentMiddleware("ApplyCleanup", func(_ *Context, schema *schemainfo.SchemaInfo) (*ast.SchemaDocument, error) {
		return rewriter.RewriteDocument(struct{}{}, schema.Document), nil
	})
}

// StripBindings removes every @_hc_bind usage and declaration from doc
func StripBindings(doc *ast.SchemaDocument) *ast.SchemaDocument {
	return cleanupRewriter([]string{directives.BindDirectiveName}).RewriteDocument(struct{}{}, doc)
}
