// Package errors implements the error taxonomy shared by every layer of the
// indexer: ingest, repository, broker, and the HTTP/WS surfaces all
// classify failures into a fixed set of Kinds so callers can decide, by
// kind alone, whether to retry, surface to a client, or just log.
package errors

import (
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an error into one of the taxonomy's semantic buckets.
type Kind string

// The fixed taxonomy. See spec §7.
const (
	KindMalformedSubject         Kind = "malformed_subject"
	KindSubjectMismatch          Kind = "subject_mismatch"
	KindNotFound                 Kind = "not_found"
	KindBrokerConnection         Kind = "broker_connection"
	KindBrokerSetup              Kind = "broker_setup"
	KindBrokerPublishing         Kind = "broker_publishing"
	KindBrokerReceiving          Kind = "broker_receiving"
	KindBrokerAcknowledgment     Kind = "broker_acknowledgment"
	KindBrokerFlush              Kind = "broker_flush"
	KindBrokerSubscription       Kind = "broker_subscription"
	KindDbInsert                 Kind = "db_insert"
	KindDbQuery                  Kind = "db_query"
	KindAuthMissing              Kind = "auth_missing"
	KindAuthInvalid              Kind = "auth_invalid"
	KindRateLimitExceeded        Kind = "rate_limit_exceeded"
	KindSubscriptionLimitExceeded Kind = "subscription_limit_exceeded"
	KindDecodeFailure            Kind = "decode_failure"
)

// Error is the concrete error type carried across package boundaries. It
// wraps an underlying cause (via github.com/pkg/errors, matching the
// teacher's dependency) while attaching a stable Kind for classification.
type Error struct {
	kind  Kind
	cause error
}

// New creates an Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, cause: pkgerrors.New(msg)}
}

// Wrap attaches a kind to an existing error, preserving its cause chain.
func Wrap(kind Kind, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, cause: pkgerrors.Wrap(err, msg)}
}

func (e *Error) Error() string { return e.cause.Error() }

// Unwrap lets errors.Is/As walk the pkg/errors cause chain.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// KindOf extracts the Kind of err, if it (or something it wraps) is an
// *Error. Returns "" for arbitrary errors.
func KindOf(err error) Kind {
	var e *Error
	if pkgerrors.As(err, &e) {
		return e.kind
	}
	return ""
}

// Retryable reports whether ingest should retry an operation that failed
// with this error, per spec §7's propagation column.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindBrokerConnection, KindBrokerPublishing, KindBrokerReceiving,
		KindBrokerAcknowledgment, KindBrokerFlush, KindDbInsert, KindDbQuery:
		return true
	default:
		return false
	}
}

// HTTPStatus maps a Kind to the status code an HTTP handler should send.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindMalformedSubject:
		return http.StatusBadRequest
	case KindAuthMissing, KindAuthInvalid:
		return http.StatusUnauthorized
	case KindRateLimitExceeded, KindSubscriptionLimitExceeded:
		return http.StatusTooManyRequests
	case KindDbInsert, KindDbQuery, KindBrokerConnection, KindBrokerPublishing,
		KindBrokerReceiving, KindBrokerAcknowledgment, KindBrokerFlush, KindBrokerSubscription,
		KindBrokerSetup:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError is the JSON envelope returned to HTTP callers, kept from the
// teacher's pkg/errors/service.go.
type ServiceError struct {
	Message string `json:"message"`
}

// ServiceErrorOf builds the JSON envelope for an error.
func ServiceErrorOf(err error) ServiceError {
	return ServiceError{Message: err.Error()}
}

// WSErrorFrame is the error envelope a WebSocket connection sends in place
// of a response frame (spec §6.3: `{"type":"error","message":"..."}`).
type WSErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WSFrame builds the error frame for err, ready to marshal onto the wire.
func WSFrame(err error) WSErrorFrame {
	return WSErrorFrame{Type: "error", Message: err.Error()}
}
