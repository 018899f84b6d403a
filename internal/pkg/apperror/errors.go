package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// Коды клиента: транспорт и разбор ответов API.
	ErrCodeNetworkFailure     ErrorCode = "NETWORK_FAILURE"
	ErrCodeServerError        ErrorCode = "SERVER_ERROR"
	ErrCodeDecodeFailure      ErrorCode = "DECODE_FAILURE"
	ErrCodeUnexpectedResponse ErrorCode = "UNEXPECTED_RESPONSE"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы sentinel-значения
// находились через errors.Is даже после Wrap.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// NetworkFailure оборачивает ошибку транспорта (хост недоступен, таймаут).
func NetworkFailure(err error) *AppError {
	return Wrap(err, ErrCodeNetworkFailure, err.Error())
}

// ServerError описывает ответ с кодом вне 2xx. message может быть пустым.
func ServerError(status int, message string) *AppError {
	return &AppError{
		Code:       ErrCodeServerError,
		Message:    message,
		HTTPStatus: status,
	}
}

// DecodeFailure означает, что тело ответа не совпало с ожидаемой JSON-схемой.
func DecodeFailure(err error) *AppError {
	return Wrap(err, ErrCodeDecodeFailure, err.Error())
}

// UnexpectedResponse означает 2xx без ожидаемого поля.
func UnexpectedResponse(message string) *AppError {
	return New(ErrCodeUnexpectedResponse, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeNetworkFailure:
		return http.StatusServiceUnavailable
	case ErrCodeDecodeFailure, ErrCodeUnexpectedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return hasCode(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func IsUnauthorized(err error) bool {
	return hasCode(err, ErrCodeUnauthorized)
}

func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

func IsNetworkFailure(err error) bool {
	return hasCode(err, ErrCodeNetworkFailure)
}

func IsServerError(err error) bool {
	return hasCode(err, ErrCodeServerError)
}

func IsDecodeFailure(err error) bool {
	return hasCode(err, ErrCodeDecodeFailure)
}

func IsUnexpectedResponse(err error) bool {
	return hasCode(err, ErrCodeUnexpectedResponse)
}

// StatusCode возвращает HTTP статус из ServerError, иначе 0.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == ErrCodeServerError {
		return appErr.HTTPStatus
	}
	return 0
}

// UserMessage формирует текст для алерта пользователю.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fmt.Sprintf("An error occurred: %v", err)
	}

	switch appErr.Code {
	case ErrCodeNetworkFailure:
		return "An error occurred: " + appErr.Message
	case ErrCodeUnexpectedResponse:
		return "Unexpected response from the server"
	case ErrCodeDecodeFailure:
		return "Failed to decode JSON response: " + appErr.Message
	case ErrCodeServerError:
		if appErr.Message != "" {
			return appErr.Message
		}
		return fmt.Sprintf("Server responded with status %d", appErr.HTTPStatus)
	default:
		return appErr.Message
	}
}

var (
	ErrReportNotFound     = New(ErrCodeNotFound, "report not found")
	ErrUserNotFound       = New(ErrCodeNotFound, "user not found")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "authorization required")
	ErrForbidden          = New(ErrCodeForbidden, "access denied")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "invalid email or password")
	ErrEmailTaken         = New(ErrCodeConflict, "email is already registered")

	ErrNotLoggedIn       = New(ErrCodeUnauthorized, "credentials not found, please log in")
	ErrInputsIncomplete  = New(ErrCodeValidation, "name, phone and image are required")
	ErrRefreshInProgress = New(ErrCodeConflict, "refresh already in progress")
	ErrMutationPending   = New(ErrCodeConflict, "mutation already pending for this report")
	ErrDeleteResolved    = New(ErrCodeConflict, "resolved reports cannot be deleted")
)
