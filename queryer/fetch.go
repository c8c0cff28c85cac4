package queryer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
)

// RequestMiddleware are functions can be passed to Queryer to affect its internal behavior
type RequestMiddleware func(*http.Request) error

// HTTPQueryer posts GraphQL requests as JSON to a single target
type HTTPQueryer struct {
	url     string
	client  *http.Client
	mdwares []RequestMiddleware
}

var _ Queryer = &HTTPQueryer{}

func NewHTTPQueryer(url string) *HTTPQueryer {
	return &HTTPQueryer{
		url:    url,
		client: &http.Client{},
	}
}

// WithMiddlewares lets the user assign middlewares to the queryer
func (q *HTTPQueryer) WithMiddlewares(mwares []RequestMiddleware) *HTTPQueryer {
	q.mdwares = mwares
	return q
}

// WithHTTPClient lets the user configure the client to use when making network requests
func (q *HTTPQueryer) WithHTTPClient(client *http.Client) *HTTPQueryer {
	q.client = client
	return q
}

func (q *HTTPQueryer) URL() string {
	return q.url
}

// Query returns the data of the response. Errors reported by the service
// are returned as gqlerrors.ErrorList.
func (q *HTTPQueryer) Query(ctx context.Context, request *Request) (map[string]interface{}, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	body, err := q.sendQueryRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("could not decode response from %s: %w", q.url, err)
	}

	if len(resp.Errors) != 0 {
		return nil, resp.Errors
	}

	return resp.Data, nil
}

func (q *HTTPQueryer) sendQueryRequest(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return q.sendRequest(req)
}

func (q *HTTPQueryer) sendRequest(request *http.Request) ([]byte, error) {
	// we could have any number of middlewares that we have to go through so
	for _, mdware := range q.mdwares {
		if err := mdware(request); err != nil {
			return nil, err
		}
	}

	if q.client == nil {
		q.client = &http.Client{}
	}

	resp, err := q.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// check for HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, fmt.Errorf("response was not successful with status code: %d", resp.StatusCode)
	}

	return body, nil
}
