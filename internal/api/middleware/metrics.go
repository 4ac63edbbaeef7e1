package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver HTTP 请求观察者（Prometheus 指标实现该接口）
type HTTPObserver interface {
	ObserveHTTP(method, route, status string, seconds float64)
}

// Metrics 请求指标中间件
// route 使用路由模板（如 /time/:id），避免 id 造成标签基数膨胀；未匹配的路由统一记为 unmatched
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
