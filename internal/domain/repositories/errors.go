package repositories

import "errors"

// Domain-specific errors для хранилища загрузок
var (
	ErrSessionNotFound  = errors.New("upload session not found")
	ErrUploadNotFound   = errors.New("upload not found")
	ErrSessionCancelled = errors.New("upload session cancelled")
)
