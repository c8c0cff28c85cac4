package merger

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/schemainfo"
	"github.com/buildbuildio/stitching/syntax"

	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

// SanitizeRootFields returns a TypeRewriter removing the named fields from
// the Query type of every source, e.g. the relay `node` field each service
// exposes on its own.
func SanitizeRootFields(fieldNames ...string) TypeRewriter {
	return func(schema *schemainfo.SchemaInfo, def *ast.Definition) *ast.Definition {
		if op, ok := schema.RootOperation(def.Name); !ok || op != ast.Query {
			return def
		}

		sanitizedFieldList := lo.Filter(def.Fields, func(field *ast.FieldDefinition, _ int) bool {
			return !lo.Contains(fieldNames, field.Name) && !common.IsBuiltinName(field.Name)
		})
		if len(sanitizedFieldList) == len(def.Fields) {
			return def
		}
		return syntax.WithFields(def, sanitizedFieldList)
	}
}
