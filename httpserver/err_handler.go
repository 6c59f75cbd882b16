package httpserver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/crud/cruderr"
)

// ErrorEntry is one element of the error-list response body.
type ErrorEntry struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

// Mapper lets host applications override the rendering of specific errors.
// It returns the entries, the HTTP status and true when it handled the
// error; returning false falls through to the default mapping.
type Mapper func(err error) ([]ErrorEntry, int, bool)

// customErrorHandler returns a Fiber error handler rendering every error as
// a JSON list of ErrorEntry. Status codes already set by handlers (>= 400)
// are not overridden.
func customErrorHandler(mappers []Mapper) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if r := c.Response(); r != nil && r.StatusCode() >= fiber.StatusBadRequest {
			return nil
		}

		for _, m := range mappers {
			if entries, status, ok := m(err); ok {
				return c.Status(status).JSON(entries)
			}
		}

		entries, status := mapError(err)
		return c.Status(status).JSON(entries)
	}
}

// mapError converts any error to the response entries and status code of the
// default taxonomy.
func mapError(err error) ([]ErrorEntry, int) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return mapFiberError(fiberErr)
	}

	e := errx.AsErrorX(err)

	switch e.Code() {
	case cruderr.CodeEntityNotFound:
		return single(cruderr.TitleEntityNotFound, e.Error()), fiber.StatusNotFound

	case cruderr.CodeEntityAlreadyExists:
		return single(cruderr.TitleEntityAlreadyExists, e.Error()), fiber.StatusBadRequest

	case cruderr.CodeValidationFailed:
		return fieldEntries(e), fiber.StatusBadRequest

	case cruderr.CodeMalformedBody, cruderr.CodeInvalidIdentifier:
		return single(cruderr.TitleMalformedBody, e.Error()), fiber.StatusBadRequest

	case cruderr.CodeBusinessRuleFailed:
		return businessEntries(e), fiber.StatusUnprocessableEntity

	case cruderr.CodeSoftDeleteNotImplemented:
		return single(cruderr.TitleInternal, e.Error()), fiber.StatusInternalServerError
	}

	return single(TitleOf(e.Type()), e.Error()), statusOf(e.Type())
}

// fieldEntries renders one entry per violated field, sorted by field name so
// the response is deterministic.
func fieldEntries(e errx.ErrorX) []ErrorEntry {
	fields := e.Fields()
	if len(fields) == 0 {
		return single(cruderr.TitleValidationFailed, e.Error())
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]ErrorEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, ErrorEntry{
			Error:       cruderr.TitleValidationFailed,
			Description: fmt.Sprintf("the field %s %s", name, fields[name]),
		})
	}
	return entries
}

// businessEntries expands a batched business error into one entry per
// message; single-message business errors produce one entry.
func businessEntries(e errx.ErrorX) []ErrorEntry {
	msgs := cruderr.BusinessMessages(e)
	if len(msgs) == 0 {
		return single(cruderr.TitleBusinessRuleFailed, e.Error())
	}

	entries := make([]ErrorEntry, 0, len(msgs))
	for _, msg := range msgs {
		entries = append(entries, ErrorEntry{
			Error:       cruderr.TitleBusinessRuleFailed,
			Description: msg,
		})
	}
	return entries
}

func mapFiberError(fiberErr *fiber.Error) ([]ErrorEntry, int) {
	title := TitleOf(errx.T_Validation)
	if fiberErr.Code >= fiber.StatusInternalServerError {
		title = cruderr.TitleInternal
	}
	return single(title, fiberErr.Message), fiberErr.Code
}

func single(title, description string) []ErrorEntry {
	return []ErrorEntry{{Error: title, Description: description}}
}

// TitleOf returns the response title for an errx type with no taxonomy code.
func TitleOf(t errx.Type) string {
	switch t {
	case errx.T_NotFound:
		return cruderr.TitleEntityNotFound
	case errx.T_Validation:
		return cruderr.TitleValidationFailed
	case errx.T_Conflict:
		return cruderr.TitleBusinessRuleFailed
	default:
		return cruderr.TitleInternal
	}
}

// statusOf maps an errx type to an HTTP status code.
func statusOf(t errx.Type) int {
	switch t {
	case errx.T_Authentication:
		return fiber.StatusUnauthorized
	case errx.T_Forbidden:
		return fiber.StatusForbidden
	case errx.T_NotFound:
		return fiber.StatusNotFound
	case errx.T_Validation:
		return fiber.StatusBadRequest
	case errx.T_Conflict:
		return fiber.StatusConflict
	case errx.T_Throttling:
		return fiber.StatusTooManyRequests
	case errx.T_Internal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
