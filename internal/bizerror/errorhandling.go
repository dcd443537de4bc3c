package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/soonland/nexus-gaming/pkg/response"
	"gorm.io/gorm"
)

// ErrorHandling renders panics and the last c.Errors entry as the response envelope
func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = fmt.Errorf("%v", ret)
		}
		logrus.WithField("path", c.Request.URL.Path).Errorf("panic recovered: %v", err)
		HandleError(c, err)
		return
	}
	if err := c.Errors.Last(); err != nil {
		HandleError(c, err)
	}
}

// HandleError writes the error response matching err and aborts the chain
func HandleError(c *gin.Context, err error) {
	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	status, code, message := classify(genericErr)
	if status >= http.StatusInternalServerError {
		logrus.WithField("path", c.Request.URL.Path).Error(genericErr)
	} else {
		logrus.WithField("path", c.Request.URL.Path).WithField("status", status).Debug(genericErr)
	}

	if !c.Writer.Written() {
		c.JSON(status, response.Failure(status, code, message))
	}
	c.Abort()
}

func classify(err error) (int, string, string) {
	var bizErr BizError
	if errors.As(err, &bizErr) {
		respond := bizErr.Respond()
		return respond.Status, respond.Code, respond.Message
	}

	// bad request: io.EOF (no body)
	if errors.Is(err, io.EOF) {
		return http.StatusBadRequest, "bad_request.body_not_found", "body not found"
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return http.StatusBadRequest, "bad_request.invalid_body_format", "invalid body format: unexpected end of input"
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return http.StatusBadRequest, "bad_request.invalid_body_format", "invalid body format: " + syntaxErr.Error()
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return http.StatusBadRequest, "bad_request.invalid_body_format", "invalid body format: " + typeErr.Error()
	}
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, "bad_request.validation_failed", validationErr.Error()
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "common.unauthenticated", err.Error()
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "security.forbidden", err.Error()
	case errors.Is(err, ErrInactiveAccount):
		return http.StatusForbidden, "security.inactive_account", err.Error()
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "common.record_not_found", "record not found"
	case errors.Is(err, ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "common.conflict", err.Error()
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, "common.too_many_requests", err.Error()
	}

	// the cause is logged by HandleError, clients only get the generic text
	return http.StatusInternalServerError, "common.internal_server_error", "internal server error"
}
