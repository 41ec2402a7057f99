package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Viewer Module Error Codes
const (
	// ErrCodePrecondition: an operation needs a loaded structure/model and none is present.
	ErrCodePrecondition ErrorCode = "VIEW_001"
	// ErrCodeInvalidReference: a typeId, theme or enum tag is not known to the loaded structure or the switcher.
	ErrCodeInvalidReference ErrorCode = "VIEW_002"
	// ErrCodeDataIntegrity: the embedded charge data contradicts the structural hierarchy.
	ErrCodeDataIntegrity ErrorCode = "VIEW_003"
	ErrCodeEngineFailure ErrorCode = "VIEW_004"
	ErrCodeFetchFailed   ErrorCode = "VIEW_005"
	ErrCodeParseFailed   ErrorCode = "VIEW_006"
)

// Infrastructure Error Codes
const (
	ErrCodeStorageError      ErrorCode = "INFRA_001"
	ErrCodeMessageQueueError ErrorCode = "INFRA_002"
)

// Short aliases used at call sites.
const (
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeNotImplemented = ErrCodeNotImplemented
	CodeTimeout        = ErrCodeTimeout
	CodeCacheError     = ErrCodeCacheError
	CodeStorageError   = ErrCodeStorageError
	CodeMessageQueue   = ErrCodeMessageQueueError

	CodePrecondition     = ErrCodePrecondition
	CodeInvalidReference = ErrCodeInvalidReference
	CodeDataIntegrity    = ErrCodeDataIntegrity
	CodeEngineFailure    = ErrCodeEngineFailure
	CodeFetchFailed      = ErrCodeFetchFailed
	CodeParseFailed      = ErrCodeParseFailed
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodePrecondition:     http.StatusConflict,
	ErrCodeInvalidReference: http.StatusBadRequest,
	ErrCodeDataIntegrity:    http.StatusUnprocessableEntity,
	ErrCodeEngineFailure:    http.StatusInternalServerError,
	ErrCodeFetchFailed:      http.StatusBadGateway,
	ErrCodeParseFailed:      http.StatusUnprocessableEntity,

	ErrCodeStorageError:      http.StatusBadGateway,
	ErrCodeMessageQueueError: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodePrecondition:     "no structure loaded",
	ErrCodeInvalidReference: "unknown reference",
	ErrCodeDataIntegrity:    "structure data is inconsistent",
	ErrCodeEngineFailure:    "scene engine failure",
	ErrCodeFetchFailed:      "failed to download structure",
	ErrCodeParseFailed:      "failed to parse structure",

	ErrCodeStorageError:      "object storage error",
	ErrCodeMessageQueueError: "message queue error",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
