// Package apierror defines errors that are safe to show to API callers.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind classifies an APIError.
type Kind string

const (
	KindUnauthorized    Kind = "unauthorized"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindValidation      Kind = "validation"
	KindDeliveryFailure Kind = "delivery_failure"
	KindRateLimited     Kind = "rate_limited"
	KindInternal        Kind = "internal"
)

// FieldError is a reason attached to a single request field.
type FieldError struct {
	Field  string
	Reason string
}

// APIError is an error with a caller-facing message and status codes.
// Err holds the root cause and is never shown to the caller.
type APIError struct {
	Kind       Kind
	GRPCCode   codes.Code
	HTTPStatus int
	Message    string
	Fields     []FieldError
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// As returns the APIError in err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == kind
}

func newError(kind Kind, message string, cause error, fields ...FieldError) *APIError {
	e := &APIError{Kind: kind, Message: message, Err: cause, Fields: fields}
	switch kind {
	case KindUnauthorized:
		e.GRPCCode, e.HTTPStatus = codes.Unauthenticated, http.StatusUnauthorized
	case KindNotFound:
		e.GRPCCode, e.HTTPStatus = codes.NotFound, http.StatusNotFound
	case KindConflict:
		e.GRPCCode, e.HTTPStatus = codes.AlreadyExists, http.StatusConflict
	case KindValidation:
		e.GRPCCode, e.HTTPStatus = codes.InvalidArgument, http.StatusBadRequest
	case KindDeliveryFailure:
		e.GRPCCode, e.HTTPStatus = codes.Unavailable, http.StatusBadGateway
	case KindRateLimited:
		e.GRPCCode, e.HTTPStatus = codes.ResourceExhausted, http.StatusTooManyRequests
	default:
		e.GRPCCode, e.HTTPStatus = codes.Internal, http.StatusInternalServerError
	}
	return e
}

func NewErrMissingAuthorizationToken() *APIError {
	return newError(KindUnauthorized, "missing authorization token", nil)
}

func NewErrInvalidAuthorizationToken(cause error) *APIError {
	return newError(KindUnauthorized, "invalid authorization token", cause)
}

func NewErrInvalidCredentials(cause error) *APIError {
	return newError(KindUnauthorized, "invalid credentials", cause)
}

func NewErrInvalidRefreshToken(cause error) *APIError {
	return newError(KindUnauthorized, "invalid refresh token", cause)
}

func NewErrInvalidAccessCode(cause error) *APIError {
	return newError(KindUnauthorized, "invalid access code", cause)
}

func NewErrUserNotFound(id string) *APIError {
	return newError(KindNotFound, fmt.Sprintf("user %s not found", id), nil)
}

func NewErrGymNotFound(id string) *APIError {
	return newError(KindNotFound, fmt.Sprintf("gym %s not found", id), nil)
}

func NewErrMembershipNotFound(email string) *APIError {
	return newError(KindNotFound, fmt.Sprintf("trainer %s is not invited to this gym", email), nil)
}

func NewErrNoTrainers(gymID string) *APIError {
	return newError(KindNotFound, fmt.Sprintf("no trainers found for gym %s", gymID), nil)
}

func NewErrUsernameIsTaken(username string) *APIError {
	return newError(KindConflict, fmt.Sprintf("username %s is already taken", username), nil,
		FieldError{Field: "username", Reason: "already taken"})
}

func NewErrEmailIsTaken(email string) *APIError {
	return newError(KindConflict, fmt.Sprintf("email %s is already taken", email), nil,
		FieldError{Field: "email", Reason: "already taken"})
}

func NewErrMembershipExists(email string) *APIError {
	return newError(KindConflict, "trainer already invited to this gym", nil,
		FieldError{Field: "email", Reason: email})
}

func NewErrMembershipAccepted(email string) *APIError {
	return newError(KindConflict, "trainer has already accepted the invitation", nil,
		FieldError{Field: "email", Reason: email})
}

func NewErrValidation(fields ...FieldError) *APIError {
	return newError(KindValidation, "validation failed", nil, fields...)
}

func NewErrInvalidEmail(email string) *APIError {
	return newError(KindValidation, "invalid email address", nil,
		FieldError{Field: "email", Reason: email})
}

func NewErrInvalidInvitation(cause error) *APIError {
	return newError(KindValidation, "invitation token is invalid or expired", cause)
}

func NewErrInvalidVerificationToken(cause error) *APIError {
	return newError(KindValidation, "verification token is invalid or expired", cause)
}

func NewErrDeliveryFailed(cause error) *APIError {
	return newError(KindDeliveryFailure, "invitation email could not be delivered", cause)
}

func NewErrRateLimited() *APIError {
	return newError(KindRateLimited, "rate limit exceeded", nil)
}

func NewErrInternalServerError(cause error) *APIError {
	return newError(KindInternal, "internal server error", cause)
}
