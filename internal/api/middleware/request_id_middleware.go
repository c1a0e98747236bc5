package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/laptop_store/internal/constants"
	"github.com/RoyceAzure/lab/laptop_store/internal/util"
	"github.com/google/uuid"
)

// RequestIdMiddleware 沿用 client 帶來的 request id, 沒有就產生一個, 並寫回 response header
func RequestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constants.RequestIDHeader)
		if requestID == "" {
			requestID = r.Header.Get(string(constants.RequestIDKey))
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(constants.RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(util.WithRequestID(r.Context(), requestID)))
	})
}
