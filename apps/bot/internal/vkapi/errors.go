package vkapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
)

// Kind classifies a failed call for retry decisions.
type Kind int

const (
	// KindFatal failures are not retried.
	KindFatal Kind = iota
	// KindTransient failures (flood control) may be retried once after a backoff.
	KindTransient
)

func (k Kind) String() string {
	if k == KindTransient {
		return "transient"
	}
	return "fatal"
}

// VK API error codes the bot reacts to.
const (
	CodeAuthFailed      = 5
	CodeFloodControl    = 9
	CodeAccessDenied    = 15
	CodeUserDeleted     = 18
	CodePrivateProfile  = 30
	CodeAccessToGroups  = 260
	CodeTooManyRequests = 6
)

// Error is a failed VK call. Code is 0 for transport and decoding failures.
type Error struct {
	Kind    Kind
	Method  string
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("vk %s: [%d] %s", e.Method, e.Code, e.Message)
	}
	return fmt.Sprintf("vk %s: %v", e.Method, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify maps an API error code to a Kind. Only flood control is transient.
func classify(code int) Kind {
	if code == CodeFloodControl {
		return KindTransient
	}
	return KindFatal
}

// IsTransient reports whether err is a retryable VK failure.
func IsTransient(err error) bool {
	var vkErr *Error
	return errors.As(err, &vkErr) && vkErr.Kind == KindTransient
}

// IsAPIError reports whether VK answered with an error body (as opposed to a transport failure).
func IsAPIError(err error) bool {
	var vkErr *Error
	return errors.As(err, &vkErr) && vkErr.Code != 0
}

// HasCode reports whether err is a VK API error with one of codes.
func HasCode(err error, codes ...int) bool {
	var vkErr *Error
	if !errors.As(err, &vkErr) {
		return false
	}
	for _, c := range codes {
		if vkErr.Code == c {
			return true
		}
	}
	return false
}

// IsConnectionError reports transport-level failures after which the long poll session must be rebuilt.
func IsConnectionError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
