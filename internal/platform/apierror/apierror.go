// Package apierror is the error model shared by every feature package:
// a stable code, a user-facing message and the HTTP status it maps to.
package apierror

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type Error struct {
	Status  int
	Code    Code
	Message string
	Details any
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// WithDetails returns a copy carrying extra diagnostic fields.
func (e *Error) WithDetails(d any) *Error {
	cp := *e
	cp.Details = d
	return &cp
}

func New(status int, code Code, msg string) *Error {
	return &Error{Status: status, Code: code, Message: msg}
}

func Invalid(msg string) *Error      { return New(http.StatusBadRequest, CodeInvalidArgument, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, CodeUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, CodeForbidden, msg) }
func NotFound(msg string) *Error     { return New(http.StatusNotFound, CodeNotFound, msg) }
func Conflict(msg string) *Error     { return New(http.StatusConflict, CodeConflict, msg) }
func Internal(msg string) *Error     { return New(http.StatusInternalServerError, CodeInternal, msg) }

func StatusOf(err error) int {
	var api *Error
	if errors.As(err, &api) && api.Status != 0 {
		return api.Status
	}
	return http.StatusInternalServerError
}

func CodeOf(err error) Code {
	var api *Error
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details,omitempty"`
	} `json:"error"`
}

func Body(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// BodyFrom converts err into the response body. Errors outside this model are
// reported as INTERNAL without their text.
func BodyFrom(err error) errorDTO {
	var api *Error
	if errors.As(err, &api) {
		b := Body(api.Code, api.Message)
		b.Error.Details = api.Details
		return b
	}
	return Body(CodeInternal, "internal server error")
}

// Respond writes err as JSON and logs anything that is not an expected outcome.
func Respond(c *gin.Context, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, BodyFrom(err))
}
