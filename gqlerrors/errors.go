package gqlerrors

import (
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const (
	SchemaMergeConflictCode    = "SCHEMA_MERGE_CONFLICT"
	MergeRuleExhaustedCode     = "MERGE_RULE_EXHAUSTED"
	InvalidNameCode            = "INVALID_NAME"
	DuplicateNameCode          = "DUPLICATE_NAME"
	NullArgumentCode           = "NULL_ARGUMENT"
	RenameDirectiveInvalidCode = "RENAME_DIRECTIVE_INVALID"
	ExtensionConflictCode      = "EXTENSION_CONFLICT"
	UnresolvedReferenceCode    = "UNRESOLVED_REFERENCE"
	SchemaParseFailedCode      = "SCHEMA_PARSE_FAILED"
	UndefinedError             = "UNDEFINED_ERROR"
)

type Location struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// Error represents a graphql error
type Error struct {
	Extensions map[string]interface{} `json:"extensions"`
	Message    string                 `json:"message"`
	Locations  []Location             `json:"locations,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Code returns the code extension if present
func (e *Error) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// NewError returns a graphql error with the given code and message
func NewError(code string, err error) *Error {
	return &Error{
		Message: err.Error(),
		Extensions: map[string]interface{}{
			"code": code,
		},
	}
}

// ErrorList represents a list of errors
type ErrorList []*Error

// ExtendErrorList adds provided err as *Error
func ExtendErrorList(errs ErrorList, err error) ErrorList {
	return append(errs, FormatError(err)...)
}

// Error returns a string representation of each error
func (list ErrorList) Error() string {
	acc := make([]string, len(list))

	for i, err := range list {
		acc[i] = err.Error()
	}

	return strings.Join(acc, ". ")
}

// FormatError flattens err into an ErrorList. Merge errors keep their code,
// parser errors keep locations, everything else is UNDEFINED_ERROR.
func FormatError(err error) ErrorList {
	if err == nil {
		return nil
	}
	switch e := err.(type) {
	case ErrorList:
		var list ErrorList
		for _, innerErr := range e {
			list = append(list, FormatError(innerErr)...)
		}
		return list
	case *Error:
		return ErrorList{e}
	case coded:
		return ErrorList{NewError(e.Code(), e)}
	case *gqlerror.Error:
		var locations []Location
		for _, loc := range e.Locations {
			locations = append(locations, Location(loc))
		}
		var path []string
		if e.Path.String() != "" {
			path = strings.Split(e.Path.String(), ".")
		}
		ext := e.Extensions
		if len(ext) == 0 {
			ext = map[string]interface{}{"code": SchemaParseFailedCode}
		}
		return ErrorList{&Error{
			Extensions: ext,
			Message:    e.Message,
			Locations:  locations,
			Path:       lo.Map(path, func(el string, i int) interface{} { return el }),
		}}
	case gqlerror.List:
		var list ErrorList
		for _, innerErr := range e {
			list = append(list, FormatError(innerErr)...)
		}
		return list
	default:
		var c coded
		if errors.As(err, &c) {
			return ErrorList{NewError(c.Code(), err)}
		}
		var parseErr *gqlerror.Error
		if errors.As(err, &parseErr) {
			res := FormatError(parseErr)
			res[0].Message = err.Error()
			return res
		}
		return ErrorList{
			NewError(UndefinedError, err),
		}
	}
}
