package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/identity/internal/common"
	pb "github.com/dmitrijs2005/identity/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

type Client struct {
	conn   *grpc.ClientConn
	client pb.IdentityServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// New connects to target. Extra dial options are appended after the
// defaults (insecure transport, token interceptor).
func New(target string, opts ...grpc.DialOption) (*Client, error) {
	c := &Client{}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewIdentityServiceClient(conn)
	return c, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Tokens returns the current token pair.
func (c *Client) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) setTokens(resp *pb.TokenPairResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func isPublic(method string) bool {
	switch method {
	case pb.IdentityService_CreateAccount_FullMethodName,
		pb.IdentityService_Authenticate_FullMethodName,
		pb.IdentityService_RefreshTokens_FullMethodName:
		return true
	}
	return false
}

func (c *Client) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if isPublic(method) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, refresh := c.Tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" {
		return err
	}

	resp, err := pb.NewIdentityServiceClient(cc).RefreshTokens(ctx, &pb.RefreshTokensRequest{RefreshToken: refresh}, opts...)
	if err != nil {
		return err
	}
	c.setTokens(resp)

	// tokens refreshed, retry once with the new access token
	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func (c *Client) CreateAccount(ctx context.Context, req *pb.CreateAccountRequest) (*pb.AccountResponse, error) {
	resp, err := c.client.CreateAccount(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// Login authenticates and keeps the returned token pair for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	resp, err := c.client.Authenticate(ctx, &pb.AuthenticateRequest{Email: email, Password: password})
	if err != nil {
		return mapError(err)
	}
	c.setTokens(resp)
	return nil
}

// Refresh rotates the stored token pair.
func (c *Client) Refresh(ctx context.Context) error {
	_, refresh := c.Tokens()

	resp, err := c.client.RefreshTokens(ctx, &pb.RefreshTokensRequest{RefreshToken: refresh})
	if err != nil {
		return mapError(err)
	}
	c.setTokens(resp)
	return nil
}

func (c *Client) Account(ctx context.Context) (*pb.AccountResponse, error) {
	resp, err := c.client.GetAccount(ctx, &pb.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req *pb.UpdateProfileRequest) (*pb.AccountResponse, error) {
	resp, err := c.client.UpdateProfile(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// ChangePassword also revokes the stored refresh token server-side, so the
// caller has to Login again once the access token expires.
func (c *Client) ChangePassword(ctx context.Context, newPassword string) error {
	_, err := c.client.ChangePassword(ctx, &pb.ChangePasswordRequest{NewPassword: newPassword})
	return mapError(err)
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	_, err := c.client.DeleteAccount(ctx, &pb.Empty{})
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrAccountExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.NotFound:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
