package result

import (
	"net/http"

	"vkinder/consts"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope of every HTTP reply.
type Response struct {
	Code    int32       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	TraceId string      `json:"trace_id"`
}

// Result writes the envelope; an empty message falls back to the code's default.
func Result(c *gin.Context, data interface{}, message string, code int32) {
	write(c, http.StatusOK, data, message, code)
}

func write(c *gin.Context, status int, data interface{}, message string, code int32) {
	traceId := c.GetString("trace_id")
	if message == "" {
		message = consts.GetMessage(code)
	}
	c.JSON(status, Response{
		Code:    code,
		Message: message,
		Data:    data,
		TraceId: traceId,
	})
}

// Success writes a success envelope.
func Success(c *gin.Context, data interface{}) {
	Result(c, data, "", consts.CodeSuccess)
}

// Fail writes a failure envelope with the code's default message.
func Fail(c *gin.Context, data interface{}, code int32) {
	Result(c, data, "", code)
}

// SuccessWithMessage writes a success envelope with a custom message.
func SuccessWithMessage(c *gin.Context, data interface{}, message string) {
	Result(c, data, message, consts.CodeSuccess)
}

// FailWithMessage writes a failure envelope with a custom message.
func FailWithMessage(c *gin.Context, data interface{}, message string, code int32) {
	Result(c, data, message, code)
}

// FailWithStatus writes a failure envelope with an HTTP status other than 200,
// for replies proxies and clients must see (throttling).
func FailWithStatus(c *gin.Context, status int, code int32) {
	write(c, status, nil, "", code)
}
