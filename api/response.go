package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds the API may put in an error body. Clients branch on the
// kind, the message is for humans.
const (
	KindValidation     = "validation"
	KindWeakPassword   = "weak_password"
	KindAuthentication = "authentication"
	KindNotFound       = "not_found"
	KindConflict       = "conflict"
	KindInternal       = "internal"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PageResponse is the paged list body.
type PageResponse struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	List     interface{} `json:"list"`
}

// OK responds 200 with the given body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created responds 201 with the given body.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent responds 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail responds with an error body of the given kind.
func Fail(c *gin.Context, status int, kind, message string) {
	c.JSON(status, ErrorResponse{Error: kind, Message: message})
}

// BadRequest responds 400 with a validation error.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, KindValidation, message)
}

// WeakPassword responds 400 for passwords failing the length policy.
func WeakPassword(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, KindWeakPassword, message)
}

// Unauthorized responds 401.
func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, KindAuthentication, message)
}

// NotFound responds 404.
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, KindNotFound, message)
}

// Conflict responds 409.
func Conflict(c *gin.Context, message string) {
	Fail(c, http.StatusConflict, KindConflict, message)
}

// InternalError responds 500.
func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, KindInternal, message)
}
