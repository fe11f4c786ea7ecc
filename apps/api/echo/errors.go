package echoapi

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/shuledesk/shuledesk/core"
	"github.com/shuledesk/shuledesk/core/student"
)

var errHTTPNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

func appHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var code int
		var message interface{}

		var vErrs validator.ValidationErrors
		var vErr *core.ValidationError
		var hErr *echo.HTTPError

		switch {
		case errors.As(err, &hErr):
			if hErr.Internal != nil {
				if herr, ok := hErr.Internal.(*echo.HTTPError); ok {
					hErr = herr
				}
			}
			code = hErr.Code
			message = hErr.Message
		case errors.As(err, &vErrs):
			fldErrs := make(map[string]string)
			for _, fe := range vErrs {
				fldErrs[fe.Field()] = fe.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case errors.As(err, &vErr):
			if vErr.Fields != nil {
				fldErrs := make(map[string]string)
				for _, fErr := range vErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = vErr.Error()
			}
			code = http.StatusBadRequest
		case errors.Is(err, student.ErrNotFound), errors.Is(err, student.ErrNoReceipt):
			code = http.StatusNotFound
			message = err.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)
			if logger != nil {
				logger.Error("unhandled api error", err)
			}
		}

		if c.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, message)
			}
			if err != nil {
				c.Echo().Logger.Error(err)
			}
		}
	}
}
