package middleware

import (
	"fmt"

	"github.com/buildbuildio/stitching/schemainfo"

	"github.com/jensneuse/abstractlogger"
	"github.com/vektah/gqlparser/v2/ast"
)

// Context carries the source documents through the pipeline. Middlewares
// replace entries of Documents, they never mutate a document in place.
type Context struct {
	Documents []*schemainfo.SchemaInfo
	Logger    abstractlogger.Logger
}

func (c *Context) log() abstractlogger.Logger {
	if c.Logger == nil {
		return abstractlogger.NoopLogger
	}
	return c.Logger
}

// Delegate is a compiled pipeline stage
type Delegate func(ctx *Context) error

// Middleware wraps the next stage of the pipeline
type Middleware func(next Delegate) Delegate

// Compose chains middlewares so that the first one runs first.
func Compose(middlewares ...Middleware) Delegate {
	next := Delegate(func(*Context) error { return nil })
	for i := len(middlewares) - 1; i >= 0; i-- {
		next = middlewares[i](next)
	}
	return next
}

// Run executes middlewares over ctx
func Run(ctx *Context, middlewares ...Middleware) error {
	return Compose(middlewares...)(ctx)
}

// DefaultPipeline returns the middlewares applied to every source before merge
func DefaultPipeline(renames ...Rename) []Middleware {
	return []Middleware{
		ApplyExtensions(),
		ApplyRenaming(renames...),
		ApplyLocalRenaming(),
		ApplyRemove(),
		ApplyMissingBindings(),
		ApplyCleanup(),
	}
}

// documentMiddleware turns a per-document transformation into a middleware.
// Entries are replaced only when transform returned a different document.
func documentMiddleware(
	name string,
	transform func(ctx *Context, schema *schemainfo.SchemaInfo) (*ast.SchemaDocument, error),
) Middleware {
	return func(next Delegate) Delegate {
		return func(ctx *Context) error {
			for i, schema := range ctx.Documents {
				doc, err := transform(ctx, schema)
				if err != nil {
					return fmt.Errorf("%s: schema %s: %w", name, schema.Name, err)
				}
				if doc == schema.Document {
					continue
				}

				replaced, err := schema.WithDocument(doc)
				if err != nil {
					return fmt.Errorf("%s: schema %s: %w", name, schema.Name, err)
				}
				ctx.Documents[i] = replaced

				ctx.log().Debug("document rewritten",
					abstractlogger.String("middleware", name),
					abstractlogger.String("schema", schema.Name),
				)
			}
			return next(ctx)
		}
	}
}
