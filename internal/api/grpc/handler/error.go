package handler

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// handleError converts service errors into gRPC status errors. Only
// APIError messages reach the caller; anything else becomes Internal.
func handleError(err error) error {
	apiErr, ok := apierror.As(err)
	if !ok {
		if errors.Is(err, model.ErrNotFound) {
			return status.Error(codes.NotFound, "not found")
		}
		apiErr = apierror.NewErrInternalServerError(err)
	}

	st := status.New(apiErr.GRPCCode, apiErr.Message)
	if len(apiErr.Fields) == 0 {
		return st.Err()
	}
	if apiErr.Kind != apierror.KindValidation && apiErr.Kind != apierror.KindConflict {
		return st.Err()
	}

	details := &errdetails.BadRequest{}
	for _, f := range apiErr.Fields {
		details.FieldViolations = append(details.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f.Field,
			Description: f.Reason,
		})
	}

	withDetails, err := st.WithDetails(details)
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

func errUnauthenticated() error {
	return handleError(apierror.NewErrMissingAuthorizationToken())
}

// logFailure logs server faults at Error, delivery problems at Warn and
// caller errors at Debug.
func logFailure(l *logger.Logger, msg string, err error, args ...any) {
	args = append(args, "error", err.Error())

	apiErr, ok := apierror.As(err)
	switch {
	case !ok && errors.Is(err, model.ErrNotFound):
		l.Debug(msg, args...)
	case !ok, apiErr.Kind == apierror.KindInternal:
		l.Error(msg, args...)
	case apiErr.Kind == apierror.KindDeliveryFailure:
		l.Warn(msg, args...)
	default:
		l.Debug(msg, args...)
	}
}
