package directives

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/gqlerrors"

	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

const (
	RenameDirectiveName = "rename"
	RemoveDirectiveName = "remove"
	BindDirectiveName   = "_hc_bind"

	ToArgumentName = "to"
	AsArgumentName = "as"
)

var internalDirectives = []string{RenameDirectiveName, RemoveDirectiveName, BindDirectiveName}

// IsInternal reports whether name is one of the directives owned by the stitching pipeline
func IsInternal(name string) bool {
	return lo.Contains(internalDirectives, name)
}

// Strip removes every directive named in names. The list is returned as is
// when nothing matched.
func Strip(list ast.DirectiveList, names ...string) ast.DirectiveList {
	if !lo.ContainsBy(list, func(d *ast.Directive) bool { return lo.Contains(names, d.Name) }) {
		return list
	}
	return lo.Filter(list, func(d *ast.Directive, _ int) bool {
		return !lo.Contains(names, d.Name)
	})
}

// Has reports whether list contains a directive with the given name
func Has(list ast.DirectiveList, name string) bool {
	return list.ForName(name) != nil
}

// IsRemoved reports whether the node carries @remove
func IsRemoved(list ast.DirectiveList) bool {
	return Has(list, RemoveDirectiveName)
}

// StringArgument returns the raw value of a string argument
func StringArgument(dir *ast.Directive, name string) (string, bool) {
	arg := dir.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return "", false
	}
	switch arg.Value.Kind {
	case ast.StringValue, ast.BlockValue:
		return arg.Value.Raw, true
	}
	return "", false
}

func stringValue(raw string) *ast.Value {
	return &ast.Value{Kind: ast.StringValue, Raw: raw}
}

// NewRename builds @rename(to: name)
func NewRename(to string) *ast.Directive {
	return &ast.Directive{
		Name: RenameDirectiveName,
		Arguments: ast.ArgumentList{
			{Name: ToArgumentName, Value: stringValue(to)},
		},
	}
}

// ParseRename validates a @rename usage and returns its target name.
// coordinate names the annotated member in the error.
func ParseRename(dir *ast.Directive, coordinate string) (string, error) {
	if len(dir.Arguments) != 1 || dir.Arguments[0].Name != ToArgumentName {
		return "", &gqlerrors.RenameDirectiveInvalidStructureError{
			Coordinate: coordinate,
			Reason:     "exactly one argument `to` is expected",
		}
	}

	to, ok := StringArgument(dir, ToArgumentName)
	if !ok {
		return "", &gqlerrors.RenameDirectiveInvalidStructureError{
			Coordinate: coordinate,
			Reason:     "the argument `to` must be a string",
		}
	}

	if !common.IsValidName(to) {
		return "", &gqlerrors.RenameDirectiveInvalidStructureError{
			Coordinate: coordinate,
			Reason:     to + " is not a valid GraphQL name",
		}
	}

	return to, nil
}
