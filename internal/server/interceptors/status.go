package interceptors

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"credential-lifecycle/internal/autherr"
)

// ToStatus maps an authenticator error to a gRPC status error. Validation errors become
// InvalidArgument, Locked becomes PermissionDenied and every other authentication error
// becomes Unauthenticated with its fixed message. Anything else is Internal with no detail.
// Errors that already carry a status are returned unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var ve *autherr.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Error())
	}
	var ae *autherr.AuthenticationError
	if errors.As(err, &ae) {
		if ae.Reason == autherr.ReasonLocked {
			return status.Error(codes.PermissionDenied, ae.Error())
		}
		return status.Error(codes.Unauthenticated, ae.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
