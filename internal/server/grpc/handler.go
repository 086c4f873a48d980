package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/identity/internal/common"
	pb "github.com/dmitrijs2005/identity/internal/proto"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/dmitrijs2005/identity/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) CreateAccount(ctx context.Context, req *pb.CreateAccountRequest) (*pb.AccountResponse, error) {
	acc, err := s.accounts.CreateAccount(ctx, models.NewAccount{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "account_id", acc.ID)
	return accountResponse(acc), nil
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *pb.AuthenticateRequest) (*pb.TokenPairResponse, error) {
	tokens, err := s.accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.TokenPairResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshTokens(ctx context.Context, req *pb.RefreshTokensRequest) (*pb.TokenPairResponse, error) {
	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh_token is required")
	}

	tokens, err := s.accounts.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.TokenPairResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) GetAccount(ctx context.Context, _ *pb.Empty) (*pb.AccountResponse, error) {
	id, err := accountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	acc, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return accountResponse(acc), nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *pb.UpdateProfileRequest) (*pb.AccountResponse, error) {
	id, err := accountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	acc, err := s.accounts.UpdateProfile(ctx, id, models.ProfileUpdate{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return accountResponse(acc), nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *pb.ChangePasswordRequest) (*pb.Empty, error) {
	id, err := accountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.ChangePassword(ctx, id, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) DeleteAccount(ctx context.Context, _ *pb.Empty) (*pb.Empty, error) {
	id, err := accountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.DeleteAccount(ctx, id); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.Empty{}, nil
}

func accountIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	id, _ := claims[services.ClaimAccountID].(string)
	if id == "" {
		return "", status.Error(codes.Unauthenticated, "token carries no account")
	}
	return id, nil
}

func accountResponse(acc *models.Account) *pb.AccountResponse {
	return &pb.AccountResponse{
		ID:        acc.ID,
		Email:     acc.Email,
		Username:  acc.Username,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Roles:     acc.RoleLabels(),
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	}
}

// toStatus maps service errors to gRPC statuses. Storage and hashing faults
// are logged and reported as a bare internal error.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrAccountExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "account not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error(ctx, err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}
