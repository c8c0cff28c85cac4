package merger

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/directives"
	"github.com/buildbuildio/stitching/gqlerrors"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/vektah/gqlparser/v2/ast"
)

type usedNames struct {
	types      map[string]struct{}
	directives map[string]struct{}
}

var referenceCollector = syntax.Walker[*usedNames]{
	EnterNamedType: func(refs *usedNames, _ *syntax.Navigator, name string) {
		refs.types[name] = struct{}{}
	},
	EnterDirective: func(refs *usedNames, _ *syntax.Navigator, dir *ast.Directive) {
		refs.directives[dir.Name] = struct{}{}
	},
	EnterDefinition: func(refs *usedNames, nav *syntax.Navigator, def *ast.Definition) {
		if nav.InExtension() {
			refs.types[def.Name] = struct{}{}
		}
	},
}

// VerifyReferences reports every type and directive doc uses without
// defining it. Builtin scalars and directives and the provenance directives
// need no definition.
func VerifyReferences(doc *ast.SchemaDocument) error {
	refs := &usedNames{
		types:      make(map[string]struct{}),
		directives: make(map[string]struct{}),
	}
	referenceCollector.Walk(refs, doc)

	var missingTypes, missingDirectives []string
	for _, name := range common.SortedKeys(refs.types) {
		if common.IsBuiltinScalar(name) || common.IsBuiltinName(name) {
			continue
		}
		if doc.Definitions.ForName(name) == nil {
			missingTypes = append(missingTypes, name)
		}
	}
	for _, name := range common.SortedKeys(refs.directives) {
		if common.IsBuiltinDirective(name) || directives.IsInternal(name) {
			continue
		}
		if doc.Directives.ForName(name) == nil {
			missingDirectives = append(missingDirectives, name)
		}
	}

	if len(missingTypes) == 0 && len(missingDirectives) == 0 {
		return nil
	}
	return &gqlerrors.UnresolvedReferenceError{Types: missingTypes, Directives: missingDirectives}
}
