package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
)

// StatusError reports a non-2xx upstream HTTP response.
type StatusError struct {
	Service    string
	StatusCode int
	Message    string
	Reason     string
}

func (e *StatusError) Error() string {
	service := e.Service
	if service == "" {
		service = "upstream"
	}
	msg := strings.TrimSpace(e.Message)
	if e.Reason != "" {
		return fmt.Sprintf("%s request: http %d (%s): %s", service, e.StatusCode, e.Reason, msg)
	}
	return fmt.Sprintf("%s request: http %d: %s", service, e.StatusCode, msg)
}

// HTTPStatus exposes the status code to IsRetryable.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

type httpStatuser interface {
	HTTPStatus() int
}

// attemptTimeoutError marks an attempt that outlived Policy.AttemptTimeout.
type attemptTimeoutError struct {
	err error
}

func (e *attemptTimeoutError) Error() string { return "attempt timed out: " + e.err.Error() }

func (e *attemptTimeoutError) Unwrap() error { return e.err }

var transientSignatures = []string{
	"connection reset",
	"connection refused",
	"no such host",
	"i/o timeout",
	"tls handshake timeout",
	"fetch failed",
	"econnreset",
	"enotfound",
	"econnrefused",
	"und_err_connect_timeout",
	"connecttimeouterror",
	"network_error",
	"timeout",
	"unexpected eof",
}

// IsRetryable reports whether err is a transient upstream failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var timeoutErr *attemptTimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// http.Client timeouts also match DeadlineExceeded; those arrive as
		// *url.Error and stay transient. A bare deadline belongs to the caller.
		var urlErr *url.Error
		return errors.As(err, &urlErr) && urlErr.Timeout()
	}

	var statusErr httpStatuser
	if errors.As(err, &statusErr) {
		code := statusErr.HTTPStatus()
		return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
