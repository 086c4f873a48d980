package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/identity/internal/common"
	pb "github.com/dmitrijs2005/identity/internal/proto"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// publicMethods are served without an access token.
var publicMethods = map[string]bool{
	pb.IdentityService_CreateAccount_FullMethodName: true,
	pb.IdentityService_Authenticate_FullMethodName:  true,
	pb.IdentityService_RefreshTokens_FullMethodName: true,
	grpc_health_v1.Health_Check_FullMethodName:      true,
}

// ClaimsFromContext returns the claims of the access token verified by the
// server interceptor.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		s.logger.Debug(ctx, "access token rejected", "method", info.FullMethod, "error", err)
		// clients refresh on this exact message
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, claimsKey, claims)
	return handler(ctx, req)
}
