package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应信封，所有接口（成功与失败）均使用该结构
type Response struct {
	IsSuccess bool        `json:"isSuccess"`
	Message   string      `json:"message"`
	Result    interface{} `json:"result"`
}

// MsgStoreUnavailable 存储故障时返回给客户端的提示
const MsgStoreUnavailable = "Storage unavailable."

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, message string, result interface{}) {
	c.JSON(http.StatusOK, Response{
		IsSuccess: true,
		Message:   message,
		Result:    result,
	})
}

// ── 错误响应 ──

// Error 通用错误响应，result 恒为 null
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{
		IsSuccess: false,
		Message:   message,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400（参数错误与记录不存在均走该状态）
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Conflict 409 并发令牌不匹配
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// ServiceUnavailable 503 存储不可用
func ServiceUnavailable(c *gin.Context) {
	Error(c, http.StatusServiceUnavailable, MsgStoreUnavailable)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error.")
}
