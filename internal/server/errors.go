package server

import "github.com/gin-gonic/gin"

// APIError is the JSON body of every failed request.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Application error codes.
const (
	ErrorCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrorCodeValidation          = "VALIDATION_ERROR"
	ErrorCodeInvalidIDFormat     = "INVALID_ID_FORMAT"
	ErrorCodeNotFound            = "NOT_FOUND"
	ErrorCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// RespondWithError aborts the request with a standardized JSON error.
func RespondWithError(c *gin.Context, httpStatus int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(httpStatus, APIError{Code: code, Message: message, Details: details})
}

// RespondWithSuccess writes data, or only the status when data is nil.
func RespondWithSuccess(c *gin.Context, httpStatus int, data interface{}) {
	if data != nil {
		c.JSON(httpStatus, data)
		return
	}
	c.Status(httpStatus)
}
