package merger

import (
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/directives"

	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

type TypeSources struct {
	// Sources lists every schema the type was merged from
	Sources []string `json:"sources"`
	// Fields is map[fieldname]schema
	Fields map[string]string `json:"fields"`
}

// SourceMap represents typename:fieldname:schema mapping recovered from the
// provenance bindings of a merged document
type SourceMap map[string]*TypeSources

// NewSourceMap reads the bindings of doc. It has to run before the bindings
// are stripped.
func NewSourceMap(doc *ast.SchemaDocument) SourceMap {
	t := make(SourceMap)
	for _, def := range doc.Definitions {
		if common.IsBuiltinName(def.Name) {
			continue
		}

		for _, bind := range directives.Binds(def.Directives) {
			t.addSource(def.Name, bind.Schema)
		}

		if def.Kind != ast.Object && def.Kind != ast.Interface {
			continue
		}
		for _, f := range def.Fields {
			if bind, ok := directives.BindFor(f.Directives, ""); ok {
				t.Set(def.Name, f.Name, bind.Schema)
			}
		}
	}
	return t
}

func (t SourceMap) get(typename string) *TypeSources {
	if t[typename] == nil {
		t[typename] = &TypeSources{Fields: make(map[string]string)}
	}
	return t[typename]
}

func (t SourceMap) addSource(typename, schema string) {
	props := t.get(typename)
	if !lo.Contains(props.Sources, schema) {
		props.Sources = append(props.Sources, schema)
	}
}

func (t SourceMap) Set(typename, fieldname, schema string) {
	t.get(typename).Fields[fieldname] = schema
}

func (t SourceMap) Get(typename, fieldname string) (res string, ok bool) {
	if t[typename] == nil {
		return "", false
	}

	res, ok = t[typename].Fields[fieldname]
	return
}

// GetSources returns every schema contributing at least one field, sorted
func (t SourceMap) GetSources() []string {
	u := make(map[string]struct{})
	for _, v := range t {
		for _, vv := range v.Fields {
			u[vv] = struct{}{}
		}
	}
	return common.SortedKeys(u)
}
