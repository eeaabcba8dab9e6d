// Package response defines the JSON envelope every endpoint answers
// with, success or error alike, so clients parse one shape.
package response

import "github.com/gin-gonic/gin"

// StandardApiResponse is the envelope. Data carries the payload on
// success; Errors carries validation details or a fault message.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

// RespondJSON writes the envelope with the given status code. status is
// "success" or "error".
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
