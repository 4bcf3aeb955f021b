package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"gymcrew-backend/internal/config"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func run(t *testing.T, method string, md metadata.MD) (string, error) {
	t.Helper()
	i := NewAuthInterceptor(security.NewTokenManager(testSecret))
	var seen string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		in, _ := metadata.FromIncomingContext(ctx)
		if v := in.Get(UserIDKey); len(v) > 0 {
			seen = v[0]
		}
		return "ok", nil
	}
	ctx := context.Background()
	if md != nil {
		ctx = metadata.NewIncomingContext(ctx, md)
	}
	_, err := i.Unary()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, handler)
	return seen, err
}

func TestUnary_ValidToken(t *testing.T) {
	token, err := security.NewTokenManager(testSecret).GenerateAccessToken("user-1", "a@example.com", time.Hour)
	require.NoError(t, err)

	seen, err := run(t, config.ServicePrefix+"TodayStatus", metadata.Pairs(
		"authorization", "Bearer "+token,
		UserIDKey, "spoofed",
	))
	require.NoError(t, err)
	assert.Equal(t, "user-1", seen)
}

func TestUnary_MissingToken(t *testing.T) {
	_, err := run(t, config.ServicePrefix+"TodayStatus", nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestUnary_BadToken(t *testing.T) {
	_, err := run(t, config.ServicePrefix+"TodayStatus", metadata.Pairs("authorization", "Bearer nope"))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestUnary_PublicStripsSpoofedUser(t *testing.T) {
	seen, err := run(t, config.ServicePrefix+"Health", metadata.Pairs(UserIDKey, "spoofed"))
	require.NoError(t, err)
	assert.Empty(t, seen)
}

type trailerStream struct {
	trailer metadata.MD
}

func (s *trailerStream) Method() string                  { return config.ServicePrefix + "TodayStatus" }
func (s *trailerStream) SetHeader(md metadata.MD) error  { return nil }
func (s *trailerStream) SendHeader(md metadata.MD) error { return nil }
func (s *trailerStream) SetTrailer(md metadata.MD) error {
	s.trailer = metadata.Join(s.trailer, md)
	return nil
}

func TestUnary_RejectionCarriesErrorKind(t *testing.T) {
	i := NewAuthInterceptor(security.NewTokenManager(testSecret))
	handler := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }

	for name, md := range map[string]metadata.MD{
		"missing": metadata.MD{},
		"invalid": metadata.Pairs("authorization", "Bearer nope"),
	} {
		stream := &trailerStream{}
		ctx := grpc.NewContextWithServerTransportStream(metadata.NewIncomingContext(context.Background(), md), stream)

		_, err := i.Unary()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: stream.Method()}, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err), name)
		assert.Equal(t, []string{string(domain.KindNotAuthenticated)}, stream.trailer.Get(ErrorKindTrailer), name)
	}
}
