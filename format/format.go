package format

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/buildbuildio/stitching/syntax"

	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"golang.org/x/exp/slices"
)

type Formatter interface {
	FormatSchemaDocument(doc *ast.SchemaDocument) string
}

// BufferedFormatter prints schema documents to strings
type BufferedFormatter struct {
	indent  string
	newLine string
	debug   bool
}

func NewBufferedFormatter() *BufferedFormatter {
	return &BufferedFormatter{
		indent:  "\t",
		newLine: "\n",
	}
}

// NewDebugBufferedFormatter prints a whole document on one line, words
// separated by single spaces
func NewDebugBufferedFormatter() *BufferedFormatter {
	return &BufferedFormatter{
		indent:  " ",
		newLine: " ",
		debug:   true,
	}
}

func (f *BufferedFormatter) WithIndent(indent string) *BufferedFormatter {
	f.indent = indent
	return f
}

func (f *BufferedFormatter) WithNewLine(newLine string) *BufferedFormatter {
	f.newLine = newLine
	return f
}

func (f *BufferedFormatter) Copy() *BufferedFormatter {
	c := *f
	return &c
}

var space = regexp.MustCompile(`\s+`)

func (f *BufferedFormatter) FormatSchemaDocument(doc *ast.SchemaDocument) string {
	buf := bytes.NewBufferString("")
	defer buf.Reset()
	formatter.NewFormatter(buf, formatter.WithIndent(f.indent)).FormatSchemaDocument(doc)
	v := buf.String()

	if f.newLine != "\n" {
		v = strings.ReplaceAll(v, "\n", f.newLine)
	}
	if f.debug {
		v = strings.TrimSpace(space.ReplaceAllString(v, " "))
	}
	return v
}

var (
	documentFormatter = NewBufferedFormatter()
	debugFormatter    = NewDebugBufferedFormatter()
)

// Document prints doc as SDL
func Document(doc *ast.SchemaDocument) string {
	return documentFormatter.FormatSchemaDocument(doc)
}

// DebugDocument prints doc on a single line
func DebugDocument(doc *ast.SchemaDocument) string {
	return debugFormatter.FormatSchemaDocument(doc)
}

// Canonical returns a copy of doc with every list sorted by name, so that two
// documents declaring the same things print the same way. doc is not changed.
func Canonical(doc *ast.SchemaDocument) *ast.SchemaDocument {
	if doc == nil {
		return nil
	}

	c := syntax.Clone(doc)
	c.Directives = sortedByName(doc.Directives, func(d *ast.DirectiveDefinition) string { return d.Name },
		func(d *ast.DirectiveDefinition) *ast.DirectiveDefinition {
			res := syntax.Clone(d)
			res.Arguments = canonicalArguments(d.Arguments)
			return res
		})
	c.Definitions = sortedByName(doc.Definitions, func(d *ast.Definition) string { return d.Name }, canonicalDefinition)
	c.Extensions = sortedByName(doc.Extensions, func(d *ast.Definition) string { return d.Name }, canonicalDefinition)
	return c
}

func canonicalDefinition(def *ast.Definition) *ast.Definition {
	c := syntax.Clone(def)
	c.Directives = canonicalDirectives(def.Directives)
	c.Interfaces = sortedNames(def.Interfaces)
	c.Types = sortedNames(def.Types)
	c.Fields = sortedByName(def.Fields, func(f *ast.FieldDefinition) string { return f.Name },
		func(f *ast.FieldDefinition) *ast.FieldDefinition {
			res := syntax.Clone(f)
			res.Arguments = canonicalArguments(f.Arguments)
			res.Directives = canonicalDirectives(f.Directives)
			return res
		})
	c.EnumValues = sortedByName(def.EnumValues, func(v *ast.EnumValueDefinition) string { return v.Name },
		func(v *ast.EnumValueDefinition) *ast.EnumValueDefinition {
			res := syntax.Clone(v)
			res.Directives = canonicalDirectives(v.Directives)
			return res
		})
	return c
}

func canonicalArguments(args ast.ArgumentDefinitionList) ast.ArgumentDefinitionList {
	return sortedByName(args, func(a *ast.ArgumentDefinition) string { return a.Name },
		func(a *ast.ArgumentDefinition) *ast.ArgumentDefinition {
			res := syntax.Clone(a)
			res.Directives = canonicalDirectives(a.Directives)
			return res
		})
}

// canonicalDirectives orders usages by name and then by their arguments, so
// repeated directives such as bindings get a stable order too.
func canonicalDirectives(list ast.DirectiveList) ast.DirectiveList {
	return sortedByName(list, func(d *ast.Directive) string {
		args := lo.Map(d.Arguments, func(a *ast.Argument, _ int) string {
			return a.Name + ":" + a.Value.String()
		})
		return d.Name + "(" + strings.Join(args, ",") + ")"
	}, func(d *ast.Directive) *ast.Directive { return d })
}

func sortedNames(names []string) []string {
	if len(names) == 0 {
		return names
	}
	res := append([]string{}, names...)
	slices.Sort(res)
	return res
}

func sortedByName[L ~[]*T, T any](list L, name func(*T) string, canonical func(*T) *T) L {
	if len(list) == 0 {
		return list
	}
	res := make(L, 0, len(list))
	for _, item := range list {
		res = append(res, canonical(item))
	}
	slices.SortStableFunc(res, func(a, b *T) bool {
		return name(a) < name(b)
	})
	return res
}
