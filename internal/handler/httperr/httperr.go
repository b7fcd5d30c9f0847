package httperr

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message   string `json:"message"`
		Category  string `json:"category,omitempty"`
		Retryable bool   `json:"retryable,omitempty"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail
	abort(c, err, resp)
}

// AbortWithCategory reports a checkout failure as {category, message, retryable}.
func AbortWithCategory(c *gin.Context, status int, err error, category, msg string, retryable bool, detail any) {
	if err == nil {
		panic("AbortWithCategory: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Error.Category = category
	resp.Error.Retryable = retryable
	resp.Detail = detail
	abort(c, err, resp)
}

func abort(c *gin.Context, err error, resp Response) {
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(resp.Status, resp)
}
