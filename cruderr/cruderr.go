// Package cruderr defines the error taxonomy of the crud toolkit.
//
// Every failure surfaced to clients is an errx error carrying one of the
// codes below; the HTTP error handler maps codes and errx types to status
// codes and renders the structured error-list body.
package cruderr

import (
	"fmt"

	"github.com/code19m/errx"
)

// Error codes of the taxonomy.
const (
	CodeEntityNotFound      = "ENTITY_NOT_FOUND"
	CodeEntityAlreadyExists = "ENTITY_ALREADY_EXISTS"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeMalformedBody       = "MALFORMED_BODY"
	CodeInvalidIdentifier   = "INVALID_IDENTIFIER"
	CodeBusinessRuleFailed  = "BUSINESS_RULE_FAILED"

	// CodeSoftDeleteNotImplemented signals a misconfigured host service, not
	// a client error. It maps to a 500-class response.
	CodeSoftDeleteNotImplemented = "SOFT_DELETE_NOT_IMPLEMENTED"
)

// Error titles rendered in the response body.
const (
	TitleEntityNotFound      = "Entity not found"
	TitleEntityAlreadyExists = "Entity already exists"
	TitleValidationFailed    = "Field validation failed"
	TitleMalformedBody       = "Http message not readable"
	TitleBusinessRuleFailed  = "Business rule failed"
	TitleInternal            = "Internal error"
)

// detailsKeyMessages carries the message list of a batched business error.
const detailsKeyMessages = "messages"

// NotFound reports that no record with the given identifier exists.
func NotFound(id any) error {
	return errx.New(
		fmt.Sprintf("record with id '%v' not found", id),
		errx.WithCode(CodeEntityNotFound),
		errx.WithType(errx.T_NotFound),
	)
}

// AlreadyExists reports a create attempt carrying an identifier that is
// already present in the repository.
func AlreadyExists(id any) error {
	return errx.New(
		fmt.Sprintf("existent record with id '%v' found", id),
		errx.WithCode(CodeEntityAlreadyExists),
		errx.WithType(errx.T_Validation),
	)
}

// MalformedBody reports an unparseable request payload.
func MalformedBody(cause error) error {
	return errx.Wrap(
		cause,
		errx.WithCode(CodeMalformedBody),
		errx.WithType(errx.T_Validation),
	)
}

// InvalidIdentifier reports a path parameter that could not be parsed into
// the entity's identifier type.
func InvalidIdentifier(raw string, cause error) error {
	return errx.Wrap(
		cause,
		errx.WithCode(CodeInvalidIdentifier),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"raw_id": raw}),
	)
}

// Business reports a violated domain rule with a single message.
func Business(message string) error {
	return errx.New(
		message,
		errx.WithCode(CodeBusinessRuleFailed),
		errx.WithType(errx.T_Conflict),
	)
}

// BusinessList reports several violated domain rules at once. Each message
// becomes one entry in the response error list.
func BusinessList(messages ...string) error {
	return errx.New(
		"business rules failed",
		errx.WithCode(CodeBusinessRuleFailed),
		errx.WithType(errx.T_Conflict),
		errx.WithDetails(errx.D{detailsKeyMessages: messages}),
	)
}

// BusinessMessages extracts the batched messages of a BusinessList error.
// It returns nil for single-message business errors.
func BusinessMessages(err error) []string {
	e := errx.AsErrorX(err)
	msgs, ok := e.Details()[detailsKeyMessages].([]string)
	if !ok {
		return nil
	}
	return msgs
}

// SoftDeleteNotImplemented reports a soft-deletable entity handled by a
// service without a configured soft-delete function.
func SoftDeleteNotImplemented(entityName string) error {
	return errx.New(
		fmt.Sprintf("soft delete not implemented for %s: configure the service with WithSoftDelete", entityName),
		errx.WithCode(CodeSoftDeleteNotImplemented),
		errx.WithType(errx.T_Internal),
	)
}

// IsNotFound reports whether err carries the ENTITY_NOT_FOUND code.
func IsNotFound(err error) bool {
	return errx.IsCodeIn(err, CodeEntityNotFound)
}

// IsAlreadyExists reports whether err carries the ENTITY_ALREADY_EXISTS code.
func IsAlreadyExists(err error) bool {
	return errx.IsCodeIn(err, CodeEntityAlreadyExists)
}
