package merger

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/schemainfo"

	"github.com/jensneuse/abstractlogger"
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

// Context accumulates the merged definitions of one Merge call.
type Context struct {
	schemas    []*schemainfo.SchemaInfo
	types      ast.DefinitionList
	directives map[string]*ast.DirectiveDefinition
	extensions ast.DefinitionList
	logger     abstractlogger.Logger
}

func newContext(schemas []*schemainfo.SchemaInfo, logger abstractlogger.Logger) *Context {
	ctx := &Context{
		schemas:    schemas,
		directives: make(map[string]*ast.DirectiveDefinition),
		logger:     logger,
	}
	for _, s := range schemas {
		ctx.extensions = append(ctx.extensions, s.Document.Extensions...)
	}
	return ctx
}

// Schemas returns the sources taking part in the merge, in registration order
func (c *Context) Schemas() []*schemainfo.SchemaInfo {
	return c.schemas
}

// Logger is never nil
func (c *Context) Logger() abstractlogger.Logger {
	if c.logger == nil {
		return abstractlogger.NoopLogger
	}
	return c.logger
}

func (c *Context) AddType(def *ast.Definition) {
	c.types = append(c.types, def)
}

// AddDirective stores def, replacing a directive added earlier under the same name
func (c *Context) AddDirective(def *ast.DirectiveDefinition) {
	c.directives[def.Name] = def
}

// CreateSchema builds the merged document: root types in operation order,
// the other types in the order they were added, directives sorted by name
// and the extensions no source could apply.
func (c *Context) CreateSchema() *ast.SchemaDocument {
	rootNames := lo.Map(common.RootOperations, func(op ast.Operation, _ int) string {
		return common.DefaultRootTypeName(op)
	})

	defs := make(ast.DefinitionList, 0, len(c.types))
	for _, name := range rootNames {
		defs = append(defs, lo.Filter(c.types, func(def *ast.Definition, _ int) bool {
			return def.Name == name
		})...)
	}
	defs = append(defs, lo.Filter(c.types, func(def *ast.Definition, _ int) bool {
		return !lo.Contains(rootNames, def.Name)
	})...)

	dirs := lo.Map(common.SortedKeys(c.directives), func(name string, _ int) *ast.DirectiveDefinition {
		return c.directives[name]
	})

	return &ast.SchemaDocument{
		Directives:  dirs,
		Definitions: defs,
		Extensions:  c.extensions,
	}
}
