package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/john/themer/internal/api"
	"github.com/john/themer/internal/theme"
)

// ErrorType categorizes different types of errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeNetwork
	ErrorTypeAPI
	ErrorTypeAuth
	ErrorTypeStorage
	ErrorTypeConfig
	ErrorTypeValidation
	ErrorTypeTimeout
	ErrorTypeInterrupted
)

// String returns the string representation of ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNetwork:
		return "Network"
	case ErrorTypeAPI:
		return "API"
	case ErrorTypeAuth:
		return "Authentication"
	case ErrorTypeStorage:
		return "Storage"
	case ErrorTypeConfig:
		return "Configuration"
	case ErrorTypeValidation:
		return "Validation"
	case ErrorTypeTimeout:
		return "Timeout"
	case ErrorTypeInterrupted:
		return "Interrupted"
	default:
		return "Unknown"
	}
}

// AppError represents an application-specific error with context
type AppError struct {
	Type        ErrorType
	Message     string
	Cause       error
	UserMessage string
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Error implements the error interface
func (ae *AppError) Error() string {
	if ae.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", ae.Type.String(), ae.Message, ae.Cause)
	}
	return fmt.Sprintf("%s: %s", ae.Type.String(), ae.Message)
}

// Unwrap returns the underlying cause error
func (ae *AppError) Unwrap() error {
	return ae.Cause
}

// WithUserMessage sets a user-friendly message
func (ae *AppError) WithUserMessage(message string) *AppError {
	ae.UserMessage = message
	return ae
}

// GetUserMessage returns a user-friendly error message
func (ae *AppError) GetUserMessage() string {
	if ae.UserMessage != "" {
		return ae.UserMessage
	}
	return ae.Message
}

// ClassifyError turns any error into an AppError with a message fit for the
// terminal
func ClassifyError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var seedErr *theme.InvalidSeedError
	if errors.As(err, &seedErr) {
		return NewAppError(ErrorTypeValidation, "Invalid seed color", err).
			WithUserMessage(fmt.Sprintf("%s must be a 6-digit hex color like #1e293b, got %q.", seedErr.Role, seedErr.Value))
	}
	if errors.Is(err, theme.ErrInvalidColor) {
		return NewAppError(ErrorTypeValidation, "Invalid color", err).
			WithUserMessage("Colors must be 6-digit hex values like #1e293b.")
	}

	if errors.Is(err, theme.ErrNoCredential) {
		return NewAppError(ErrorTypeAuth, "No credential", err).
			WithUserMessage("Not signed in. Run `themer auth set-token` first.")
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return NewAppError(ErrorTypeAuth, "Credential rejected", err).
			WithUserMessage("The preference service rejected your token. Set a new one with `themer auth set-token`.")
	}

	if errors.Is(err, context.Canceled) {
		return NewAppError(ErrorTypeInterrupted, "Operation was cancelled", err).
			WithUserMessage("The operation was interrupted.")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewAppError(ErrorTypeTimeout, "Operation timed out", err).
			WithUserMessage("The operation took too long to complete. Please try again.")
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return NewAppError(ErrorTypeAPI, "Preference service error", err).
			WithUserMessage(fmt.Sprintf("The preference service answered %d: %s", apiErr.StatusCode, apiErr.Message))
	}

	if isNetworkError(err) {
		return NewAppError(ErrorTypeNetwork, "Network connectivity issue", err).
			WithUserMessage("Unable to reach the preference service. Your local theme is unaffected.")
	}

	msg := err.Error()
	if strings.Contains(msg, "config") {
		return NewAppError(ErrorTypeConfig, "Configuration problem", err).
			WithUserMessage(msg)
	}
	if strings.Contains(msg, "preferences") || strings.Contains(msg, "keystore") || strings.Contains(msg, "journal") {
		return NewAppError(ErrorTypeStorage, "Storage operation failed", err).
			WithUserMessage(msg)
	}

	return NewAppError(ErrorTypeUnknown, "An unexpected error occurred", err).
		WithUserMessage(msg)
}

// isNetworkError checks if an error is network-related
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var syscallErr syscall.Errno
	if errors.As(err, &syscallErr) {
		switch syscallErr {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ECONNABORTED:
			return true
		}
	}

	errMsg := strings.ToLower(err.Error())
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"network unreachable",
		"host unreachable",
		"no route to host",
		"no such host",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errMsg, keyword) {
			return true
		}
	}

	return false
}
