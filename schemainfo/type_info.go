package schemainfo

import "github.com/vektah/gqlparser/v2/ast"

// TypeInfo pairs a type definition with the schema it was taken from.
type TypeInfo interface {
	Definition() *ast.Definition
	Schema() *SchemaInfo
	IsRootType() bool
}

type typeInfo struct {
	definition *ast.Definition
	schema     *SchemaInfo
}

func (t typeInfo) Definition() *ast.Definition { return t.definition }
func (t typeInfo) Schema() *SchemaInfo         { return t.schema }

func (t typeInfo) IsRootType() bool {
	return t.schema.IsRootType(t.definition)
}

type ObjectTypeInfo struct{ typeInfo }
type InterfaceTypeInfo struct{ typeInfo }
type UnionTypeInfo struct{ typeInfo }
type InputObjectTypeInfo struct{ typeInfo }
type EnumTypeInfo struct{ typeInfo }
type ScalarTypeInfo struct{ typeInfo }

// NewTypeInfo returns the variant matching def.Kind
func NewTypeInfo(def *ast.Definition, schema *SchemaInfo) TypeInfo {
	base := typeInfo{definition: def, schema: schema}
	switch def.Kind {
	case ast.Object:
		return &ObjectTypeInfo{base}
	case ast.Interface:
		return &InterfaceTypeInfo{base}
	case ast.Union:
		return &UnionTypeInfo{base}
	case ast.InputObject:
		return &InputObjectTypeInfo{base}
	case ast.Enum:
		return &EnumTypeInfo{base}
	default:
		return &ScalarTypeInfo{base}
	}
}

// AllOf returns the group typed as T when every member is a T.
func AllOf[T TypeInfo](types []TypeInfo) ([]T, bool) {
	res := make([]T, 0, len(types))
	for _, t := range types {
		v, ok := t.(T)
		if !ok {
			return nil, false
		}
		res = append(res, v)
	}
	return res, len(res) > 0
}

// DirectiveTypeInfo pairs a directive definition with its schema.
type DirectiveTypeInfo struct {
	Definition *ast.DirectiveDefinition
	Schema     *SchemaInfo
}
