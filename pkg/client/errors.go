package client

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrorType represents different transfer failure categories
type ErrorType int

const (
	ErrorTypeDNS ErrorType = iota
	ErrorTypeConnection
	ErrorTypeTLS
	ErrorTypeTimeout
	ErrorTypeRequest
	ErrorTypeBody
	ErrorTypeRedirect
)

// TransferError represents a detailed transfer error with categorization
type TransferError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// NewDNSError creates a DNS resolution error
func NewDNSError(err error) *TransferError {
	return &TransferError{Type: ErrorTypeDNS, Message: "DNS resolution failed", Err: err}
}

// NewConnectionError creates a connection error
func NewConnectionError(err error) *TransferError {
	return &TransferError{Type: ErrorTypeConnection, Message: "connection failed", Err: err}
}

// NewTLSError creates a TLS handshake error
func NewTLSError(err error) *TransferError {
	return &TransferError{Type: ErrorTypeTLS, Message: "TLS handshake failed", Err: err}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(err error) *TransferError {
	return &TransferError{Type: ErrorTypeTimeout, Message: "operation timeout", Err: err}
}

// NewRequestError creates an invalid request error
func NewRequestError(err error, format string, args ...any) *TransferError {
	return &TransferError{Type: ErrorTypeRequest, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewBodyError creates a response-too-large error
func NewBodyError() *TransferError {
	return &TransferError{Type: ErrorTypeBody, Message: "maximum response size reached"}
}

// NewRedirectError creates a redirect-chain error
func NewRedirectError(format string, args ...any) *TransferError {
	return &TransferError{Type: ErrorTypeRedirect, Message: fmt.Sprintf(format, args...)}
}

// classify categorizes a transport failure by inspecting the error chain.
func classify(err error) *TransferError {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewDNSError(err)
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return NewTLSError(err)
	}
	var recErr tls.RecordHeaderError
	if errors.As(err, &recErr) {
		return NewTLSError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}
