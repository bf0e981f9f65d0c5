package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MimeLyc/ref-sub-corrector/internal/corrector"
	"github.com/MimeLyc/ref-sub-corrector/pkg/log"
)

type ErrorType int

const (
	ErrFileNotFound ErrorType = iota
	ErrFileRead
	ErrFileWrite
	ErrParse
	ErrConfig
	ErrEmptyInput
	ErrRateLimit
	ErrRemote
	ErrInvalidResponse
	ErrExhausted
	ErrNetwork
	ErrUnknown
)

type RefSubError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *RefSubError {
	return &RefSubError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *RefSubError {
	return &RefSubError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   cause,
	}
}

func (e *RefSubError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		var ctxParts []string
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *RefSubError) Unwrap() error {
	return e.Cause
}

func (e *RefSubError) WithContext(key string, value any) *RefSubError {
	e.Context[key] = value
	return e
}

func (t ErrorType) String() string {
	switch t {
	case ErrFileNotFound:
		return "FileNotFound"
	case ErrFileRead:
		return "FileRead"
	case ErrFileWrite:
		return "FileWrite"
	case ErrParse:
		return "Parse"
	case ErrConfig:
		return "Config"
	case ErrEmptyInput:
		return "EmptyInput"
	case ErrRateLimit:
		return "RateLimitExhausted"
	case ErrRemote:
		return "RemoteError"
	case ErrInvalidResponse:
		return "InvalidResponse"
	case ErrExhausted:
		return "ExhaustedRetries"
	case ErrNetwork:
		return "Network"
	case ErrUnknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// ClassifyCorrectorError wraps a failure from the correction pipeline into
// the service taxonomy so callers and operators see one vocabulary.
func ClassifyCorrectorError(err error) *RefSubError {
	var rateLimitErr *corrector.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return NewErrorWithCause(ErrRateLimit, "rate limit not lifted within the attempt budget", err)
	}

	var remoteErr *corrector.RemoteError
	if errors.As(err, &remoteErr) {
		return NewErrorWithCause(ErrRemote, remoteErr.Message, err)
	}

	var invalidErr *corrector.InvalidResponseError
	if errors.As(err, &invalidErr) {
		return NewErrorWithCause(ErrInvalidResponse, invalidErr.Reason, err)
	}

	if errors.Is(err, corrector.ErrExhaustedRetries) {
		return NewErrorWithCause(ErrExhausted, "correction attempts exhausted", err)
	}

	return NewErrorWithCause(ErrUnknown, "correction failed", err)
}

type ErrorHandler interface {
	Handle(err error) bool
	GetAdvice(err *RefSubError) string
}

type DefaultErrorHandler struct{}

func NewDefaultErrorHandler() ErrorHandler {
	return &DefaultErrorHandler{}
}

func (h *DefaultErrorHandler) Handle(err error) bool {
	refErr, ok := err.(*RefSubError)
	if !ok {
		log.Error("Unknown Error: %v", err)
		return false
	}

	advice := h.GetAdvice(refErr)
	log.Error("Error Detail: %v\n advice: %s", err, advice)

	return true
}

// GetAdvice returns error handling advice
func (h *DefaultErrorHandler) GetAdvice(err *RefSubError) string {
	switch err.Type {
	case ErrFileNotFound:
		return "Please check that the file path is correct and ensure the file exists with read permissions"
	case ErrFileRead:
		return "Please check file permissions to ensure read access and verify the file is not corrupted"
	case ErrFileWrite:
		return "Please ensure the output directory exists and has write permissions"
	case ErrParse:
		return "Please verify the file format is correct: subtitle files should be SRT and reference transcripts plain text"
	case ErrConfig:
		return "Please check that configuration files or environment variables are set correctly"
	case ErrEmptyInput:
		return "The subtitle file contains no decodable entries; verify its contents and encoding"
	case ErrRateLimit:
		return "The API rate limit persisted through every retry; wait a while or lower the batch size and cooldown settings"
	case ErrRemote:
		return "The API rejected the request; check the API key, the model name, and the service status page"
	case ErrInvalidResponse:
		return "The model returned no usable text; try a different model or loosen content-policy settings"
	case ErrExhausted:
		return "All retry attempts failed; check network connectivity and the API service status"
	case ErrNetwork:
		return "Please check network connectivity to ensure access to the API service"
	default:
		return "Please review detailed error information and check relevant configuration and files"
	}
}

func IsErrorType(err error, errorType ErrorType) bool {
	var refErr *RefSubError
	if errors.As(err, &refErr) {
		return refErr.Type == errorType
	}
	return false
}

func WrapError(err error, errorType ErrorType, message string) *RefSubError {
	return NewErrorWithCause(errorType, message, err)
}
