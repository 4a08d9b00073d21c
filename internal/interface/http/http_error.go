package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// internalErrorMessage is the only body text clients ever see for 5xx responses.
const internalErrorMessage = "Internal server error"

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: internalErrorMessage,
		Err:     err,
	}
}

// body renders the client payload; server failures never leak details.
func (e *HTTPError) body() gin.H {
	if e.Status >= http.StatusInternalServerError {
		return gin.H{"error": internalErrorMessage}
	}
	message := e.Message
	if message == "" {
		message = http.StatusText(e.Status)
	}
	return gin.H{"error": message, "code": e.Code}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
