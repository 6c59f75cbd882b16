package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/crud/cruderr"
	"github.com/rise-and-shine/crud/httpserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppWithRoute(err error, opts ...httpserver.Option) *fiber.App {
	srv := httpserver.New(httpserver.Config{Host: "127.0.0.1", Port: 0}, opts...)
	srv.RegisterRouter(func(r fiber.Router) {
		r.Get("/boom", func(c *fiber.Ctx) error { return err })
	})
	return srv.App()
}

func request(t *testing.T, app *fiber.App) (*http.Response, []httpserver.ErrorEntry) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)

	var entries []httpserver.ErrorEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.NotEmpty(t, entries)
	return resp, entries
}

func TestErrorHandler_Taxonomy(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedTitle  string
	}{
		{
			name:           "entity not found",
			err:            cruderr.NotFound(7),
			expectedStatus: fiber.StatusNotFound,
			expectedTitle:  cruderr.TitleEntityNotFound,
		},
		{
			name:           "entity already exists",
			err:            cruderr.AlreadyExists(7),
			expectedStatus: fiber.StatusBadRequest,
			expectedTitle:  cruderr.TitleEntityAlreadyExists,
		},
		{
			name:           "malformed body",
			err:            cruderr.MalformedBody(errx.New("unexpected end of JSON input")),
			expectedStatus: fiber.StatusBadRequest,
			expectedTitle:  cruderr.TitleMalformedBody,
		},
		{
			name:           "invalid identifier",
			err:            cruderr.InvalidIdentifier("abc", errx.New("not a number")),
			expectedStatus: fiber.StatusBadRequest,
			expectedTitle:  cruderr.TitleMalformedBody,
		},
		{
			name:           "business rule failed",
			err:            cruderr.Business("product is discontinued"),
			expectedStatus: fiber.StatusUnprocessableEntity,
			expectedTitle:  cruderr.TitleBusinessRuleFailed,
		},
		{
			name:           "soft delete not implemented",
			err:            cruderr.SoftDeleteNotImplemented("Product"),
			expectedStatus: fiber.StatusInternalServerError,
			expectedTitle:  cruderr.TitleInternal,
		},
		{
			name:           "plain error is internal",
			err:            errx.New("boom"),
			expectedStatus: fiber.StatusInternalServerError,
			expectedTitle:  cruderr.TitleInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, entries := request(t, newAppWithRoute(tt.err))

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, tt.expectedTitle, entries[0].Error)
		})
	}
}

func TestErrorHandler_ValidationRendersOneEntryPerField(t *testing.T) {
	err := errx.New(
		"validation failed",
		errx.WithCode(cruderr.CodeValidationFailed),
		errx.WithType(errx.T_Validation),
		errx.WithFields(errx.M{
			"name":  "is required",
			"price": "must be greater than or equal to 0",
		}),
	)

	resp, entries := request(t, newAppWithRoute(err))

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Len(t, entries, 2)
	assert.Equal(t, "the field name is required", entries[0].Description)
	assert.Equal(t, "the field price must be greater than or equal to 0", entries[1].Description)
}

func TestErrorHandler_BusinessListExpandsMessages(t *testing.T) {
	err := cruderr.BusinessList("stock is empty", "supplier is inactive")

	resp, entries := request(t, newAppWithRoute(err))

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.Len(t, entries, 2)
	assert.Equal(t, "stock is empty", entries[0].Description)
	assert.Equal(t, "supplier is inactive", entries[1].Description)
	for _, e := range entries {
		assert.Equal(t, cruderr.TitleBusinessRuleFailed, e.Error)
	}
}

func TestErrorHandler_FiberErrorKeepsItsStatus(t *testing.T) {
	resp, _ := request(t, newAppWithRoute(fiber.ErrTooManyRequests))
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestErrorHandler_CustomMapperWins(t *testing.T) {
	mapper := func(err error) ([]httpserver.ErrorEntry, int, bool) {
		if errx.IsCodeIn(err, "TEAPOT") {
			return []httpserver.ErrorEntry{{Error: "Teapot", Description: "short and stout"}}, fiber.StatusTeapot, true
		}
		return nil, 0, false
	}

	err := errx.New("teapot", errx.WithCode("TEAPOT"))
	resp, entries := request(t, newAppWithRoute(err, httpserver.WithErrorMapper(mapper)))

	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "Teapot", entries[0].Error)
}

func TestErrorHandler_UnknownRouteIsNotFound(t *testing.T) {
	srv := httpserver.New(httpserver.Config{Host: "127.0.0.1", Port: 0})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
