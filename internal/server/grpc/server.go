// Package grpc exposes the account service over gRPC: IdentityService, the
// standard health service and an access-token interceptor.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/identity/internal/logging"
	pb "github.com/dmitrijs2005/identity/internal/proto"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/dmitrijs2005/identity/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// AccountService is the subset of services.AccountService the transport uses.
type AccountService interface {
	CreateAccount(ctx context.Context, in models.NewAccount) (*models.Account, error)
	Authenticate(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.Account, error)
	ChangePassword(ctx context.Context, id, newPassword string) error
	DeleteAccount(ctx context.Context, id string) error
}

// AccessTokenVerifier checks the access token sent with protected calls.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (auth.Claims, error)
}

type GRPCServer struct {
	pb.UnimplementedIdentityServiceServer
	address  string
	accounts AccountService
	tokens   AccessTokenVerifier
	logger   logging.Logger
}

var _ pb.IdentityServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, as AccountService, tv AccessTokenVerifier) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: as,
		tokens:   tv,
	}
}

// newServer builds the grpc.Server with every service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	pb.RegisterIdentityServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(pb.IdentityService_ServiceDesc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
