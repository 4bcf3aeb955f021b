package interceptor

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"gymcrew-backend/internal/config"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/security"
)

const (
	// UserIDKey is the metadata header the interceptor stamps with the
	// authenticated user id. Handlers read it back with GetUserIDFromContext.
	UserIDKey = "user-id"

	// ErrorKindTrailer carries the domain.ErrorKind of a failed call.
	ErrorKindTrailer = "x-error-kind"
)

type AuthInterceptor struct {
	tokenManager security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm}
}

// Unary returns a server interceptor function to authenticate unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		// Drop any client-supplied user id before deciding anything.
		ctx = stripUserID(ctx)

		level := config.GetSecurityLevel(info.FullMethod)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			return handler(ctx, req)
		}

		token, err := i.extractToken(ctx)
		if err != nil {
			return nil, unauthenticated(ctx, err.Error())
		}

		claims, err := i.tokenManager.ValidateToken(token)
		if err != nil {
			logger.Debug("Token rejected", "method", info.FullMethod, "error", err)
			return nil, unauthenticated(ctx, "invalid token: "+err.Error())
		}

		if claims.Type != security.TokenTypeAccess {
			return nil, unauthenticated(ctx, security.ErrWrongTokenType.Error())
		}

		md, _ := metadata.FromIncomingContext(ctx)
		md.Set(UserIDKey, claims.UserID())
		return handler(metadata.NewIncomingContext(ctx, md), req)
	}
}

func (i *AuthInterceptor) extractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("metadata is not provided")
	}

	authHeader := md["authorization"]
	if len(authHeader) == 0 {
		return "", errors.New("authorization token is not provided")
	}

	token := authHeader[0]
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}

	return token, nil
}

// unauthenticated tags the rejection with the not_authenticated kind, the
// same trailer handler failures carry.
func unauthenticated(ctx context.Context, msg string) error {
	if err := grpc.SetTrailer(ctx, metadata.Pairs(ErrorKindTrailer, string(domain.KindNotAuthenticated))); err != nil {
		logger.Debug("Could not set error trailer", "error", err)
	}
	return status.Error(codes.Unauthenticated, msg)
}

func stripUserID(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return metadata.NewIncomingContext(ctx, metadata.New(nil))
	}
	md = md.Copy()
	md.Delete(UserIDKey)
	return metadata.NewIncomingContext(ctx, md)
}
