package introspection

// Result is the data of an introspection query response
type Result struct {
	Schema *Schema `json:"__schema"`
}

type Schema struct {
	QueryType        *RootType   `json:"queryType"`
	MutationType     *RootType   `json:"mutationType"`
	SubscriptionType *RootType   `json:"subscriptionType"`
	Types            []FullType  `json:"types"`
	Directives       []Directive `json:"directives"`
}

type RootType struct {
	Name string `json:"name"`
}

type Directive struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Locations    []string     `json:"locations"`
	Args         []InputValue `json:"args"`
	IsRepeatable bool         `json:"isRepeatable"`
}

type Field struct {
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Args              []InputValue `json:"args"`
	Type              TypeRef      `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason string       `json:"deprecationReason"`
}

type FullType struct {
	Kind          string       `json:"kind"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
	Fields        []Field      `json:"fields"`
	EnumValues    []EnumValue  `json:"enumValues"`
}

type EnumValue struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	IsDeprecated      bool   `json:"isDeprecated"`
	DeprecationReason string `json:"deprecationReason"`
}

// InputValue describes an argument or an input field. DefaultValue holds
// the GraphQL literal as text; some servers send a JSON value instead.
type InputValue struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	DefaultValue interface{} `json:"defaultValue"`
	Type         TypeRef     `json:"type"`
}

type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name"`
	OfType *TypeRef `json:"ofType"`
}
