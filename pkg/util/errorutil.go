package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by services and transport.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodePaymentProvider = "PAYMENT_PROVIDER_ERROR"
	CodeEmailProvider   = "EMAIL_PROVIDER_ERROR"
	CodeStoreRead       = "STORE_READ_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewInvalidRequest(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidRequest, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthenticated(message string) error {
	return NewDomainError(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewRateLimited(message string) error {
	return NewDomainError(CodeRateLimited, message, http.StatusTooManyRequests, nil)
}

// NewPaymentProviderError wraps an upstream payment failure, keeping the provider message.
func NewPaymentProviderError(err error) error {
	return &DomainError{
		Code:       CodePaymentProvider,
		Message:    providerMessage(err, "payment provider error"),
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewEmailProviderError wraps an upstream email failure, keeping the provider message.
func NewEmailProviderError(err error) error {
	return &DomainError{
		Code:       CodeEmailProvider,
		Message:    providerMessage(err, "email provider error"),
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewStoreReadError marks a transient failure reading from the relational store.
func NewStoreReadError(err error) error {
	return &DomainError{
		Code:       CodeStoreRead,
		Message:    "store read failed",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func providerMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// IsKind reports whether err carries the given DomainError code.
func IsKind(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
