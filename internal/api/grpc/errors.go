package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"gymcrew-backend/internal/api/grpc/interceptor"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
)

// ErrorKindTrailer carries the domain.ErrorKind of a failed call.
const ErrorKindTrailer = interceptor.ErrorKindTrailer

var kindCodes = map[domain.ErrorKind]codes.Code{
	domain.KindNotAuthenticated:       codes.Unauthenticated,
	domain.KindNotAuthorized:          codes.PermissionDenied,
	domain.KindDuplicateCheckIn:       codes.AlreadyExists,
	domain.KindAlreadyMember:          codes.AlreadyExists,
	domain.KindInvalidOrExpiredToken:  codes.NotFound,
	domain.KindCheckInNotFound:        codes.NotFound,
	domain.KindGroupNotFound:          codes.NotFound,
	domain.KindMaxUsesReached:         codes.FailedPrecondition,
	domain.KindNotPendingManual:       codes.FailedPrecondition,
	domain.KindCannotSelfApprove:      codes.FailedPrecondition,
	domain.KindAdminMustTransferFirst: codes.FailedPrecondition,
	domain.KindOutsideFenceRadius:     codes.FailedPrecondition,
	domain.KindNoFencesConfigured:     codes.FailedPrecondition,
	domain.KindLocationUnavailable:    codes.FailedPrecondition,
	domain.KindInvalidLocation:        codes.InvalidArgument,
	domain.KindInvalidTimezone:        codes.InvalidArgument,
	domain.KindInvalidArgument:        codes.InvalidArgument,
	domain.KindTransientUnavailable:   codes.Unavailable,
}

// CodeOf maps a domain failure to a gRPC status code.
func CodeOf(kind domain.ErrorKind) codes.Code {
	if c, ok := kindCodes[kind]; ok {
		return c
	}
	return codes.Unknown
}

// toStatus converts err into a status error with the user-facing message and
// records the kind in the trailer. Status errors pass through unchanged.
func toStatus(ctx context.Context, method string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	kind := domain.KindOf(err)
	if kind == domain.KindTransientUnavailable {
		logger.ErrorContext(ctx, "Request failed", "method", method, "error", err)
	}
	if terr := grpc.SetTrailer(ctx, metadata.Pairs(ErrorKindTrailer, string(kind))); terr != nil {
		logger.Debug("Could not set error trailer", "method", method, "error", terr)
	}
	return status.Error(CodeOf(kind), domain.HumanMessage(err))
}
