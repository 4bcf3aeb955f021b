package grpc

import (
	"context"

	"google.golang.org/grpc/metadata"

	"gymcrew-backend/internal/api/grpc/interceptor"
	"gymcrew-backend/internal/domain"
)

// GetUserIDFromContext extracts the user ID the auth interceptor placed in
// the incoming metadata.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", domain.ErrNotAuthenticated
	}

	userIDs := md.Get(interceptor.UserIDKey)
	if len(userIDs) == 0 || userIDs[0] == "" {
		return "", domain.ErrNotAuthenticated
	}
	return userIDs[0], nil
}
