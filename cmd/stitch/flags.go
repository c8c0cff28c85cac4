package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/buildbuildio/stitching"
	"github.com/buildbuildio/stitching/common"
	"github.com/buildbuildio/stitching/middleware"
	"github.com/buildbuildio/stitching/queryer"
)

// parseNamed splits a name=value flag value
func parseNamed(flag, value string) (string, string, error) {
	name, rest, ok := strings.Cut(value, "=")
	if !ok || name == "" || rest == "" {
		return "", "", fmt.Errorf("--%s expects name=value, got %q", flag, value)
	}
	if !common.IsValidName(name) {
		return "", "", fmt.Errorf("--%s: %s is not a valid schema name", flag, name)
	}
	return name, rest, nil
}

func parseSources(schemas, urls []string) ([]stitching.Source, error) {
	var sources []stitching.Source

	for _, value := range schemas {
		name, path, err := parseNamed("schema", value)
		if err != nil {
			return nil, err
		}
		sources = append(sources, stitching.FileSource(name, path))
	}

	for _, value := range urls {
		name, url, err := parseNamed("url", value)
		if err != nil {
			return nil, err
		}
		sources = append(sources, stitching.URLSource(name, url))
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one --schema or --url is required")
	}

	return sources, nil
}

// parseRename reads [schema:]Type[.field]=To
func parseRename(value string) (middleware.Rename, error) {
	var r middleware.Rename

	target, to, ok := strings.Cut(value, "=")
	if !ok || target == "" || to == "" {
		return r, fmt.Errorf("--rename expects [schema:]Type[.field]=To, got %q", value)
	}
	r.To = to

	if schema, rest, ok := strings.Cut(target, ":"); ok {
		r.Schema = schema
		target = rest
	}

	r.Type, r.Field, _ = strings.Cut(target, ".")
	if r.Type == "" {
		return r, fmt.Errorf("--rename expects [schema:]Type[.field]=To, got %q", value)
	}

	return r, nil
}

func parseRenames(values []string) ([]middleware.Rename, error) {
	renames := make([]middleware.Rename, 0, len(values))
	for _, value := range values {
		r, err := parseRename(value)
		if err != nil {
			return nil, err
		}
		renames = append(renames, r)
	}
	return renames, nil
}

// headerMiddleware sets the given "Key: Value" headers on introspection requests
func headerMiddleware(headers []string) (queryer.RequestMiddleware, error) {
	parsed := make(http.Header)
	for _, header := range headers {
		key, value, ok := strings.Cut(header, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("--header expects \"Key: Value\", got %q", header)
		}
		parsed.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	return func(r *http.Request) error {
		for key, values := range parsed {
			for _, value := range values {
				r.Header.Add(key, value)
			}
		}
		return nil
	}, nil
}
