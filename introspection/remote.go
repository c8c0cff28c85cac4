package introspection

import (
	"context"
	"fmt"

	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/queryer"

	json "github.com/goccy/go-json"
	"github.com/jensneuse/abstractlogger"
	"github.com/vektah/gqlparser/v2/ast"
)

// RemoteSchemaIntrospector loads the schema documents served at urls
type RemoteSchemaIntrospector interface {
	IntrospectRemoteDocuments(ctx context.Context, urls ...string) ([]*ast.SchemaDocument, error)
}

type QueryerFactory func(url string) queryer.Queryer

// DefaultQueryerFactory posts introspection queries over plain HTTP
func DefaultQueryerFactory(url string) queryer.Queryer {
	return queryer.NewHTTPQueryer(url)
}

// ParallelRemoteSchemaIntrospector queries every url concurrently. The
// documents are returned in the order of the urls.
type ParallelRemoteSchemaIntrospector struct {
	Factory QueryerFactory
	Logger  abstractlogger.Logger
}

var _ RemoteSchemaIntrospector = &ParallelRemoteSchemaIntrospector{}

func (p *ParallelRemoteSchemaIntrospector) IntrospectRemoteDocuments(ctx context.Context, urls ...string) ([]*ast.SchemaDocument, error) {
	factory := p.Factory
	if factory == nil {
		factory = DefaultQueryerFactory
	}
	logger := p.Logger
	if logger == nil {
		logger = abstractlogger.NoopLogger
	}

	docs, errs := common.AsyncMap(urls, func(url string) (*ast.SchemaDocument, error) {
		logger.Debug("introspecting remote schema", abstractlogger.String("url", url))

		doc, err := introspectRemoteDocument(ctx, factory(url))
		if err != nil {
			logger.Error("remote schema introspection failed",
				abstractlogger.String("url", url),
				abstractlogger.Error(err),
			)
			return nil, fmt.Errorf("%s: %w", url, err)
		}
		return doc, nil
	})
	if errs != nil {
		return nil, errs
	}

	return docs, nil
}

func introspectRemoteDocument(ctx context.Context, q queryer.Queryer) (*ast.SchemaDocument, error) {
	data, err := q.Query(ctx, &queryer.Request{
		Query:         introspectionQuery,
		OperationName: &introspectionQueryName,
	})
	if err != nil {
		return nil, err
	}

	res, err := parseQueryerResponse(data)
	if err != nil {
		return nil, err
	}

	return BuildDocument(q.URL(), res)
}

func parseQueryerResponse(data map[string]interface{}) (*Result, error) {
	tmp, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var res Result
	if err := json.Unmarshal(tmp, &res); err != nil {
		return nil, err
	}

	return &res, nil
}
