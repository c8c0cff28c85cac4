package introspection

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/buildbuildio/stitching/common"

	json "github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

var typeKinds = map[string]ast.DefinitionKind{
	"OBJECT":       ast.Object,
	"SCALAR":       ast.Scalar,
	"INTERFACE":    ast.Interface,
	"UNION":        ast.Union,
	"INPUT_OBJECT": ast.InputObject,
	"ENUM":         ast.Enum,
}

// BuildDocument turns an introspection result into a schema document named
// sourceName. Builtin scalars, builtin directives and introspection types are
// left out. A schema definition is emitted only when a root type does not
// carry its default name.
func BuildDocument(sourceName string, res *Result) (*ast.SchemaDocument, error) {
	if res == nil || res.Schema == nil || res.Schema.QueryType == nil || res.Schema.QueryType.Name == "" {
		return nil, errors.New("could not find the root query")
	}
	remote := res.Schema

	doc := &ast.SchemaDocument{}

	if schema := schemaDefinition(remote); schema != nil {
		doc.Schema = append(doc.Schema, schema)
	}

	for _, remoteType := range remote.Types {
		if remoteType.Name == "" {
			return nil, errors.New("could not find type's name")
		}
		if common.IsBuiltinScalar(remoteType.Name) || common.IsBuiltinName(remoteType.Name) {
			continue
		}

		def, err := parseType(remoteType)
		if err != nil {
			return nil, err
		}
		doc.Definitions = append(doc.Definitions, def)
	}

	for _, directive := range remote.Directives {
		if directive.Name == "" {
			return nil, errors.New("could not find directive's name")
		}
		// builtin directives are implied by every schema
		if common.IsBuiltinDirective(directive.Name) {
			continue
		}

		args, err := parseArgList(directive.Args)
		if err != nil {
			return nil, err
		}

		doc.Directives = append(doc.Directives, &ast.DirectiveDefinition{
			Name:         directive.Name,
			Description:  directive.Description,
			Arguments:    args,
			IsRepeatable: directive.IsRepeatable,
			Locations: lo.Map(directive.Locations, func(l string, _ int) ast.DirectiveLocation {
				return ast.DirectiveLocation(l)
			}),
		})
	}

	// print and parse again so that positions and literal kinds are the
	// ones a document read from SDL would have
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)

	parsed, err := parser.ParseSchema(&ast.Source{Name: sourceName, Input: buf.String()})
	if err != nil {
		return nil, err
	}

	return parsed, nil
}

func schemaDefinition(remote *Schema) *ast.SchemaDefinition {
	roots := map[ast.Operation]*RootType{
		ast.Query:        remote.QueryType,
		ast.Mutation:     remote.MutationType,
		ast.Subscription: remote.SubscriptionType,
	}

	custom := false
	schema := &ast.SchemaDefinition{}
	for _, op := range common.RootOperations {
		root := roots[op]
		if root == nil || root.Name == "" {
			continue
		}
		if root.Name != common.DefaultRootTypeName(op) {
			custom = true
		}
		schema.OperationTypes = append(schema.OperationTypes, &ast.OperationTypeDefinition{
			Operation: op,
			Type:      root.Name,
		})
	}

	if !custom {
		return nil
	}
	return schema
}

func parseType(remoteType FullType) (*ast.Definition, error) {
	kind, ok := typeKinds[remoteType.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %s of type %s", remoteType.Kind, remoteType.Name)
	}

	def := &ast.Definition{
		Kind:        kind,
		Name:        remoteType.Name,
		Description: remoteType.Description,
	}

	for _, value := range remoteType.EnumValues {
		def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{
			Name:        value.Name,
			Description: value.Description,
			Directives:  deprecation(value.IsDeprecated, value.DeprecationReason),
		})
	}

	for _, field := range remoteType.Fields {
		t, err := parseTypeRef(&field.Type)
		if err != nil {
			return nil, err
		}
		args, err := parseArgList(field.Args)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name:        field.Name,
			Description: field.Description,
			Arguments:   args,
			Type:        t,
			Directives:  deprecation(field.IsDeprecated, field.DeprecationReason),
		})
	}

	for _, field := range remoteType.InputFields {
		t, err := parseTypeRef(&field.Type)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name:         field.Name,
			Description:  field.Description,
			Type:         t,
			DefaultValue: defaultValue(field.DefaultValue, t),
		})
	}

	for _, iface := range remoteType.Interfaces {
		if iface.Name == "" {
			return nil, errors.New("could not find type's name")
		}
		def.Interfaces = append(def.Interfaces, iface.Name)
	}

	if kind == ast.Union {
		for _, possible := range remoteType.PossibleTypes {
			if possible.Name == "" {
				return nil, errors.New("could not find type's name")
			}
			def.Types = append(def.Types, possible.Name)
		}
	}

	return def, nil
}

func deprecation(deprecated bool, reason string) ast.DirectiveList {
	if !deprecated {
		return nil
	}
	dir := &ast.Directive{Name: "deprecated"}
	if reason != "" {
		dir.Arguments = ast.ArgumentList{{
			Name:  "reason",
			Value: &ast.Value{Kind: ast.StringValue, Raw: reason},
		}}
	}
	return ast.DirectiveList{dir}
}

func parseArgList(args []InputValue) (ast.ArgumentDefinitionList, error) {
	var result ast.ArgumentDefinitionList

	for _, argument := range args {
		t, err := parseTypeRef(&argument.Type)
		if err != nil {
			return nil, err
		}
		result = append(result, &ast.ArgumentDefinition{
			Name:         argument.Name,
			Description:  argument.Description,
			Type:         t,
			DefaultValue: defaultValue(argument.DefaultValue, t),
		})
	}

	return result, nil
}

func parseTypeRef(ref *TypeRef) (*ast.Type, error) {
	switch ref.Kind {
	case "NON_NULL", "LIST":
		if ref.OfType == nil {
			return nil, fmt.Errorf("%s type reference without ofType", ref.Kind)
		}
		elem, err := parseTypeRef(ref.OfType)
		if err != nil {
			return nil, err
		}
		if ref.Kind == "LIST" {
			return ast.ListType(elem, nil), nil
		}
		nonNull := *elem
		nonNull.NonNull = true
		return &nonNull, nil
	}

	if ref.Name == "" {
		return nil, errors.New("could not find type's name")
	}
	return ast.NamedType(ref.Name, nil), nil
}

// defaultValue keeps the literal text of value. Enum kind is used because
// the formatter prints its raw text unchanged; parsing the printed document
// restores the real kind.
func defaultValue(value interface{}, t *ast.Type) *ast.Value {
	if value == nil || t == nil {
		return nil
	}

	if s, ok := value.(string); ok {
		// servers following the introspection schema send the literal as text
		if t.Elem != nil || strings.HasPrefix(s, `"`) || !isStringLike(t.Name()) {
			return &ast.Value{Kind: ast.EnumValue, Raw: s}
		}
		return &ast.Value{Kind: ast.StringValue, Raw: s}
	}

	return &ast.Value{Kind: ast.EnumValue, Raw: literal(value)}
}

func isStringLike(name string) bool {
	return name == "String" || name == "ID"
}

func literal(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case []interface{}:
		return "[" + strings.Join(lo.Map(v, func(el interface{}, _ int) string {
			return literal(el)
		}), ", ") + "]"
	case map[string]interface{}:
		keys := lo.Keys(v)
		sort.Strings(keys)
		return "{" + strings.Join(lo.Map(keys, func(k string, _ int) string {
			return k + ": " + literal(v[k])
		}), ", ") + "}"
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "null"
		}
		return string(raw)
	}
}
