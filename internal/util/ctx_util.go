package util

import (
	"context"

	"github.com/RoyceAzure/lab/laptop_store/internal/constants"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, constants.RequestIDKey, requestID)
}

// GetRequestID 沒有時回傳 "unknown"
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(constants.RequestIDKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
