package errcodes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"not found", NotFound("Genre"), KindNotFound},
		{"wrapped not found", errors.WithStack(NotFound("Genre")), KindNotFound},
		{"conflict", Conflict("Genre", "Fantasy", 3), KindConflict},
		{"validation failed", NewValidationFailed([]Violation{{"name", "required"}}), KindValidationFailed},
		{"malformed", MalformedPayload(), KindBadRequest},
		{"store failure", errors.New("disk I/O error"), KindStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestNotFoundIs(t *testing.T) {
	t.Parallel()

	err := errors.WithStack(NotFound("Genre"))
	assert.True(t, errors.Is(err, NotFound("Genre")))
	assert.False(t, errors.Is(err, NotFound("Author")))
}

func TestConflictCarriesID(t *testing.T) {
	t.Parallel()

	var e *Error
	require.True(t, errors.As(errors.WithStack(Conflict("Genre", "Fantasy", 12)), &e))
	assert.Equal(t, 12, e.ConflictingID)
	assert.Equal(t, http.StatusConflict, e.HTTPCode)
	assert.Equal(t, `Genre "Fantasy" already exists.`, e.Message)
}

func TestValidationFailed(t *testing.T) {
	t.Parallel()

	err := NewValidationFailed([]Violation{
		{Field: "first_name", Message: `"first_name" is required`},
		{Field: "date_of_birth", Message: `"date_of_birth" is an invalid date`},
	})
	assert.Equal(t, []string{"first_name", "date_of_birth"}, err.Fields())
	assert.Equal(t, `"first_name" is required; "date_of_birth" is an invalid date`, err.Error())
}

func TestViolations(t *testing.T) {
	t.Parallel()

	violations, err := Violations(nil)
	assert.NoError(t, err)
	assert.Empty(t, violations)

	wrapped := errors.WithStack(NewValidationFailed([]Violation{{Field: "name", Message: `"name" is required`}}))
	violations, err = Violations(wrapped)
	assert.NoError(t, err)
	assert.Equal(t, []Violation{{Field: "name", Message: `"name" is required`}}, violations)

	storeErr := errors.New("disk I/O error")
	violations, err = Violations(storeErr)
	assert.Equal(t, storeErr, err)
	assert.Nil(t, violations)
}

func TestHandleJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"not found", NotFound("Genre"), http.StatusNotFound, `"code":"not_found"`},
		{"conflict", Conflict("Genre", "Fantasy", 5), http.StatusConflict, `"conflicting_id":5`},
		{"validation", NewValidationFailed([]Violation{{"name", "bad"}}), http.StatusUnprocessableEntity, `"violations":[{"field":"name","message":"bad"}]`},
		{"store failure", errors.New("boom"), http.StatusInternalServerError, `"message":"Internal Server Error"`},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, `"code":"method_not_allowed"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()
			c := e.NewContext(req, rr)

			NewHandler().Handle(tt.err, c)

			assert.Equal(t, tt.code, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.body)
		})
	}
}
