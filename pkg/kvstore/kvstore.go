package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrKeyNotFound 查無此key, 所有實作都要回傳這個錯誤 (可用errors.Is判斷)
var ErrKeyNotFound = errors.New("key not found")

//go:generate mockgen -destination=mock/kvstore.go -package=mock_kvstore github.com/RoyceAzure/lab/laptop_store/pkg/kvstore Store

// Store 字串 key/value 儲存
// 對應瀏覽器的 localStorage, value 一律是序列化後的字串
type Store interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type StoreErrorCode int

const (
	StoreErrorUnknown StoreErrorCode = iota
	StoreErrorConnection
	StoreErrorTimeout
	StoreErrorInvalid
)

func (c StoreErrorCode) String() string {
	switch c {
	case StoreErrorConnection:
		return "CONNECTION"
	case StoreErrorTimeout:
		return "TIMEOUT"
	case StoreErrorInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

type StoreError struct {
	Code    StoreErrorCode `json:"code"`
	Key     string         `json:"key"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("code: %s, key: %s, message: %s", e.Code, e.Key, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(code StoreErrorCode, key string, err error) *StoreError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &StoreError{Code: code, Key: key, Message: msg, Err: err}
}
