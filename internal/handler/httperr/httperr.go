package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the body of every non-2xx reply except the coupon rejection payloads.
type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message   string `json:"message"`
		RequestID string `json:"requestId,omitempty"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// NewResponse tags the body with the request id set by the logging middleware.
func NewResponse(c *gin.Context, status int, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail}
	resp.Error.Message = msg
	resp.Error.RequestID = c.GetString("request_id")
	return resp
}

// AbortWithError keeps err on the gin context for the request log; only msg and
// detail reach the client.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := NewResponse(c, status, msg, detail)

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
