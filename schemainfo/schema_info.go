package schemainfo

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/gqlerrors"

	"github.com/vektah/gqlparser/v2/ast"
)

// SchemaInfo wraps one source document and indexes its type and directive
// definitions by name. It is never mutated once created; a changed document
// gets a new SchemaInfo through WithDocument.
type SchemaInfo struct {
	Name       string
	Document   *ast.SchemaDocument
	Types      map[string]*ast.Definition
	Directives map[string]*ast.DirectiveDefinition

	rootTypes map[ast.Operation]string
}

func New(name string, doc *ast.SchemaDocument) (*SchemaInfo, error) {
	if !common.IsValidName(name) {
		return nil, &gqlerrors.InvalidNameError{Argument: "schema name", Name: name}
	}
	if doc == nil {
		return nil, &gqlerrors.NullArgumentError{Argument: "document"}
	}

	return index(name, doc)
}

// WithDocument returns a SchemaInfo with the same name indexing doc
func (s *SchemaInfo) WithDocument(doc *ast.SchemaDocument) (*SchemaInfo, error) {
	if doc == nil {
		return nil, &gqlerrors.NullArgumentError{Argument: "document"}
	}
	if doc == s.Document {
		return s, nil
	}
	return index(s.Name, doc)
}

func index(name string, doc *ast.SchemaDocument) (*SchemaInfo, error) {
	s := &SchemaInfo{
		Name:       name,
		Document:   doc,
		Types:      make(map[string]*ast.Definition, len(doc.Definitions)),
		Directives: make(map[string]*ast.DirectiveDefinition, len(doc.Directives)),
		rootTypes:  make(map[ast.Operation]string),
	}

	for _, def := range doc.Definitions {
		if existing, ok := s.Types[def.Name]; ok {
			return nil, gqlerrors.NewSchemaMergeError(existing, def,
				"the type %s is defined more than once in schema %s", def.Name, name)
		}
		s.Types[def.Name] = def
	}

	for _, def := range doc.Directives {
		s.Directives[def.Name] = def
	}

	explicit := false
	for _, list := range []ast.SchemaDefinitionList{doc.Schema, doc.SchemaExtension} {
		for _, sd := range list {
			for _, op := range sd.OperationTypes {
				s.rootTypes[op.Operation] = op.Type
				explicit = true
			}
		}
	}

	if !explicit {
		for _, op := range common.RootOperations {
			if _, ok := s.Types[common.DefaultRootTypeName(op)]; ok {
				s.rootTypes[op] = common.DefaultRootTypeName(op)
			}
		}
	}

	return s, nil
}

// GetRootType returns the definition serving op, nil if the schema has none
func (s *SchemaInfo) GetRootType(op ast.Operation) *ast.Definition {
	name, ok := s.rootTypes[op]
	if !ok {
		return nil
	}
	return s.Types[name]
}

// RootOperation returns the operation served by the type called name. A type
// serving several operations reports the first one of common.RootOperations.
func (s *SchemaInfo) RootOperation(name string) (ast.Operation, bool) {
	for _, op := range common.RootOperations {
		if typeName, ok := s.rootTypes[op]; ok && typeName == name {
			return op, true
		}
	}
	return "", false
}

func (s *SchemaInfo) IsRootType(def *ast.Definition) bool {
	_, ok := s.RootOperation(def.Name)
	return ok && s.Types[def.Name] == def
}

func (s *SchemaInfo) SortedTypeNames() []string {
	return common.SortedKeys(s.Types)
}

func (s *SchemaInfo) SortedDirectiveNames() []string {
	return common.SortedKeys(s.Directives)
}
