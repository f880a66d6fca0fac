// Package middleware 存放 chi 路由使用的 HTTP 中间件。
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/w3wg/crypto-sage/pkg/log"
)

// RequestLogger 记录每个请求的状态码、耗时与来源。不记录请求体。
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Infow("HTTP Request Log",
			"requestId", chimw.GetReqID(r.Context()),
			"statusCode", ww.Status(),
			"bytes", ww.BytesWritten(),
			"latency", time.Since(startTime).String(),
			"clientIP", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
		)
	})
}
