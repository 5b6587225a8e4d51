package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Коды ошибок конвейера загрузки, попадают в тело ответа и журнал загрузок
const (
	CodeParseError          = "PARSE_ERROR"
	CodeClassificationError = "CLASSIFICATION_ERROR"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeInsertError         = "INSERT_ERROR"
	CodeDuplicateFile       = "DUPLICATE_FILE"
)

// AppError представляет ошибку приложения с HTTP статусом и контекстом
type AppError struct {
	Code    int            `json:"status_code"`          // HTTP статус код
	ErrCode string         `json:"error_code,omitempty"` // Код ошибки конвейера
	Message string         `json:"message"`              // Сообщение для пользователя
	Err     error          `json:"-"`                    // Внутренняя ошибка для логов, не сериализуется
	Context map[string]any `json:"-"`                    // Дополнительный контекст (upload_id, файл и т.д.)
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает вложенную ошибку для errors.Is и errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode возвращает HTTP статус код ошибки
// Реализует интерфейс middleware.HTTPError
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage возвращает сообщение для пользователя
// Реализует интерфейс middleware.HTTPError
func (e *AppError) UserMessage() string {
	return e.Message
}

// GetContext возвращает контекст ошибки одной строкой для логов
// Реализует интерфейс middleware.HTTPError
func (e *AppError) GetContext() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}
	return strings.Join(parts, " ")
}

// WithContext добавляет пару ключ-значение к контексту ошибки
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ContextValue возвращает значение контекста по ключу
func (e *AppError) ContextValue(key string) (any, bool) {
	v, ok := e.Context[key]
	return v, ok
}

// NewNotFoundError создает ошибку 404 Not Found
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Err:     err,
	}
}

// NewValidationError создает ошибку 400 Bad Request
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		ErrCode: CodeValidationError,
		Message: message,
		Err:     err,
	}
}

// NewInternalError создает ошибку 500 Internal Server Error
// Для пользователя возвращается общее сообщение, детали только в логах
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Внутренняя ошибка сервера", // Общее сообщение для пользователя
		Err:     errors.Join(errors.New(message), err), // Детали для лога
	}
}

// NewConflictError создает ошибку 409 Conflict
func NewConflictError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
		Err:     err,
	}
}

// NewUnauthorizedError создает ошибку 401 Unauthorized
func NewUnauthorizedError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Message: message,
		Err:     err,
	}
}

// NewForbiddenError создает ошибку 403 Forbidden
func NewForbiddenError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Message: message,
		Err:     err,
	}
}

// NewServiceUnavailableError создает ошибку 503 Service Unavailable
func NewServiceUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewParseError создает ошибку 422 для нечитаемого или поврежденного файла
func NewParseError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		ErrCode: CodeParseError,
		Message: message,
		Err:     err,
	}
}

// NewClassificationError создает ошибку 422 для файла с уверенностью ниже порога
func NewClassificationError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		ErrCode: CodeClassificationError,
		Message: message,
		Err:     err,
	}
}

// NewInsertError создает ошибку 500 для сбоя записи пакета в хранилище
func NewInsertError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		ErrCode: CodeInsertError,
		Message: message,
		Err:     err,
	}
}

// NewDuplicateFileError создает ошибку 409 для повторной загрузки тех же байт.
// Контекст несет идентификатор первой загрузки этого содержимого
func NewDuplicateFileError(fileName, existingUploadID string) *AppError {
	e := &AppError{
		Code:    http.StatusConflict,
		ErrCode: CodeDuplicateFile,
		Message: fmt.Sprintf("файл %s уже загружен ранее", fileName),
	}
	return e.WithContext("upload_id", existingUploadID).WithContext("file_name", fileName)
}

// WrapError оборачивает существующую ошибку с контекстом
// Если ошибка уже AppError, добавляет контекст. Иначе создает новую InternalError
func WrapError(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		// Если это уже AppError, добавляем контекст к сообщению
		return &AppError{
			Code:    appErr.Code,
			ErrCode: appErr.ErrCode,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
			Context: appErr.Context,
		}
	}

	// Иначе создаем новую InternalError
	return NewInternalError(message, err)
}
