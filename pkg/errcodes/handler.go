package errcodes

import (
	"net/http"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// ErrorView is the template rendered for browser clients.
const ErrorView = "error"

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is an Echo error handler that uses HTTP errors accordingly, and any
// generic error will be interpreted as an internal server error. Browsers get
// the error view, everything else gets JSON.
func (h *Handler) Handle(err error, c echo.Context) {
	if errutils.IsIgnorableErr(err) {
		logger.FromEchoContext(c).Err(err).Warn("broken pipe")
		return
	}
	if c.Response().Committed {
		logger.FromEchoContext(c).Err(err).Warn("error after response was committed")
		return
	}

	httpCode, payload := h.generatePayload(c, err)

	// Internal server errors
	if httpCode == http.StatusInternalServerError {
		logger.FromEchoContext(c).Err(err).Error("server error")
	}

	if wantsHTML(c) {
		body := payload["error"].(map[string]interface{})
		data := echo.Map{
			"title":   http.StatusText(httpCode),
			"status":  httpCode,
			"message": body["message"],
		}
		if err := c.Render(httpCode, ErrorView, data); err != nil {
			logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler render error")
		}
		return
	}

	if err := c.JSON(httpCode, payload); err != nil {
		logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func wantsHTML(c echo.Context) bool {
	if c.Echo().Renderer == nil {
		return false
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func (h *Handler) generatePayload(c echo.Context, err error) (int, map[string]interface{}) {
	return h.generateIndividualPayload(c, err)
}

func (h *Handler) generateIndividualPayload(_ echo.Context, err error) (int, map[string]interface{}) {
	code := ""
	msg := ""
	httpCode := http.StatusInternalServerError
	body := map[string]interface{}{}

	// Echo errors
	var he *echo.HTTPError
	if ok := errors.As(err, &he); ok {
		httpCode = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(he.Code)
		}
		code = strcase.ToSnake(msg)
	}

	// Custom errors
	var e *Error
	if ok := errors.As(err, &e); ok {
		httpCode = e.HTTPCode
		code = e.Code
		msg = e.Message
		if e.ConflictingID != 0 {
			body["conflicting_id"] = e.ConflictingID
		}
	}

	var vf *ValidationFailed
	if ok := errors.As(err, &vf); ok {
		httpCode = http.StatusUnprocessableEntity
		code = codeValidationError
		msg = vf.Error()
		body["violations"] = vf.Violations
	}

	// Internal server errors that aren't Echo errors or custom errors
	if httpCode == http.StatusInternalServerError && msg == "" {
		code = "internal_server_error"
		msg = "Internal Server Error"
	}

	body["code"] = code
	body["message"] = msg
	body["status_code"] = httpCode

	return httpCode, map[string]interface{}{
		"error": body,
	}
}
