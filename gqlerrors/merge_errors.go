package gqlerrors

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

type coded interface {
	error
	Code() string
}

// SchemaMergeError is raised by a merge handler when two same-named
// definitions cannot be reconciled. Both definitions are kept for diagnostics.
type SchemaMergeError struct {
	Message string
	Left    *ast.Definition
	Right   *ast.Definition
}

func NewSchemaMergeError(left, right *ast.Definition, format string, args ...interface{}) *SchemaMergeError {
	return &SchemaMergeError{
		Message: fmt.Sprintf(format, args...),
		Left:    left,
		Right:   right,
	}
}

func (e *SchemaMergeError) Error() string {
	return e.Message
}

func (e *SchemaMergeError) Code() string {
	return SchemaMergeConflictCode
}

// MergeRuleExhaustedError signals that a group of same-named definitions
// reached the end of the rule chain without being consumed.
type MergeRuleExhaustedError struct {
	Name      string
	Directive bool
}

func (e *MergeRuleExhaustedError) Error() string {
	if e.Directive {
		return fmt.Sprintf("the directive definitions could not be handled: %s", e.Name)
	}
	return fmt.Sprintf("the type definitions could not be handled: %s", e.Name)
}

func (e *MergeRuleExhaustedError) Code() string {
	return MergeRuleExhaustedCode
}

type InvalidNameError struct {
	Argument string
	Name     string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("%s %q is not a valid GraphQL name", e.Argument, e.Name)
}

func (e *InvalidNameError) Code() string {
	return InvalidNameCode
}

type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a schema with the name %q was already registered", e.Name)
}

func (e *DuplicateNameError) Code() string {
	return DuplicateNameCode
}

type NullArgumentError struct {
	Argument string
}

func (e *NullArgumentError) Error() string {
	return fmt.Sprintf("%s must not be nil", e.Argument)
}

func (e *NullArgumentError) Code() string {
	return NullArgumentCode
}

// RenameDirectiveInvalidStructureError is returned for a malformed @rename usage.
type RenameDirectiveInvalidStructureError struct {
	Coordinate string
	Reason     string
}

func (e *RenameDirectiveInvalidStructureError) Error() string {
	return fmt.Sprintf("the @rename directive on %s has an invalid structure: %s", e.Coordinate, e.Reason)
}

func (e *RenameDirectiveInvalidStructureError) Code() string {
	return RenameDirectiveInvalidCode
}

// ExtensionConflictError is returned when an extension redeclares a field
// with a different type than its base definition.
type ExtensionConflictError struct {
	TypeName  string
	FieldName string
	BaseType  string
	ExtType   string
}

func (e *ExtensionConflictError) Error() string {
	return fmt.Sprintf(
		"the field %s.%s is declared as %s but the extension declares it as %s",
		e.TypeName, e.FieldName, e.BaseType, e.ExtType,
	)
}

func (e *ExtensionConflictError) Code() string {
	return ExtensionConflictCode
}

// UnresolvedReferenceError lists names that are referenced by the merged
// document without a matching definition.
type UnresolvedReferenceError struct {
	Types      []string
	Directives []string
}

func (e *UnresolvedReferenceError) Error() string {
	var parts []string
	if len(e.Types) > 0 {
		parts = append(parts, "types "+strings.Join(e.Types, ", "))
	}
	if len(e.Directives) > 0 {
		parts = append(parts, "directives "+strings.Join(e.Directives, ", "))
	}
	return "unresolved references to " + strings.Join(parts, "; ")
}

func (e *UnresolvedReferenceError) Code() string {
	return UnresolvedReferenceCode
}
