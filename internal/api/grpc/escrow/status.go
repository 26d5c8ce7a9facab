package escrow

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/repository/token"
)

// ErrorDomain is the ErrorInfo domain of escrow failures.
const ErrorDomain = "escrow"

//nolint:gochecknoglobals // Read-only lookup table.
var kindCodes = map[domain.Kind]codes.Code{
	domain.KindNotInitialized:     codes.FailedPrecondition,
	domain.KindAlreadyInitialized: codes.AlreadyExists,
	domain.KindNotAuthorized:      codes.PermissionDenied,
	domain.KindInvalidAmount:      codes.InvalidArgument,
	domain.KindPackageNotFound:    codes.NotFound,
	domain.KindPackageNotActive:   codes.FailedPrecondition,
	domain.KindPackageExpired:     codes.FailedPrecondition,
	domain.KindPackageNotExpired:  codes.FailedPrecondition,
	domain.KindInsufficientFunds:  codes.FailedPrecondition,
	domain.KindPackageIDExists:    codes.AlreadyExists,
	domain.KindInvalidState:       codes.FailedPrecondition,
}

// ToStatus converts a service error into a gRPC status error.
// Domain failures carry an ErrorInfo with their reason code.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}

	kind, ok := domain.KindOf(err)
	if !ok {
		return infrastructureStatus(err)
	}

	code, ok := kindCodes[kind]
	if !ok {
		code = codes.Unknown
	}

	st := status.New(code, err.Error())

	detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: kind.Reason(),
		Domain: ErrorDomain,
	})
	if detailErr != nil {
		return st.Err()
	}

	return detailed.Err()
}

// infrastructureStatus maps errors that are not domain failures.
func infrastructureStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, token.ErrInsufficientBalance):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, token.ErrInvalidAmount):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// FromStatus converts a status error produced by ToStatus back into the
// matching domain error. Other errors are returned unchanged.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for _, detail := range st.Details() {
		info, isInfo := detail.(*errdetails.ErrorInfo)
		if !isInfo || info.GetDomain() != ErrorDomain {
			continue
		}

		if domainErr, found := domain.ErrorFromReason(info.GetReason()); found {
			return domainErr
		}
	}

	return err
}
