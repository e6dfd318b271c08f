package services

import "errors"

// 业务错误哨兵，controller层据此映射HTTP状态码
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNotFound           = errors.New("not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyExists      = errors.New("already exists")
)
