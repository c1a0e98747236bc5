package service

import "errors"

var (
	ErrNotInitialized      = errors.New("storefront is not initialized")
	ErrEmptySelection      = errors.New("no items selected")
	ErrHandoffMissing      = errors.New("checkout items not found")
	ErrInvalidShipping     = errors.New("invalid shipping information")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order can not be cancelled")
	ErrStatusTerminal      = errors.New("order status can not advance")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrProductNotFound     = errors.New("product not found")
	ErrBrandNotFound       = errors.New("brand not found")
	ErrInvalidArgument     = errors.New("invalid argument")
)
