package queryer

import (
	"context"

	"github.com/buildbuildio/stitching/gqlerrors"
)

// Request is a single GraphQL operation sent over HTTP
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName *string                `json:"operationName,omitempty"`
}

type Response struct {
	Errors gqlerrors.ErrorList    `json:"errors"`
	Data   map[string]interface{} `json:"data"`
}

// Queryer sends a GraphQL request to a remote service and returns its data
type Queryer interface {
	Query(ctx context.Context, request *Request) (map[string]interface{}, error)
	URL() string
}
