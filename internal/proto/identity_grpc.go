package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	IdentityService_CreateAccount_FullMethodName  = "/identity.v1.IdentityService/CreateAccount"
	IdentityService_Authenticate_FullMethodName   = "/identity.v1.IdentityService/Authenticate"
	IdentityService_RefreshTokens_FullMethodName  = "/identity.v1.IdentityService/RefreshTokens"
	IdentityService_GetAccount_FullMethodName     = "/identity.v1.IdentityService/GetAccount"
	IdentityService_UpdateProfile_FullMethodName  = "/identity.v1.IdentityService/UpdateProfile"
	IdentityService_ChangePassword_FullMethodName = "/identity.v1.IdentityService/ChangePassword"
	IdentityService_DeleteAccount_FullMethodName  = "/identity.v1.IdentityService/DeleteAccount"
)

// IdentityServiceClient is the client API for IdentityService.
type IdentityServiceClient interface {
	CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error)
	Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*TokenPairResponse, error)
	RefreshTokens(ctx context.Context, in *RefreshTokensRequest, opts ...grpc.CallOption) (*TokenPairResponse, error)
	GetAccount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AccountResponse, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*AccountResponse, error)
	ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*Empty, error)
	DeleteAccount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
}

type identityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityServiceClient(cc grpc.ClientConnInterface) IdentityServiceClient {
	return &identityServiceClient{cc}
}

// invoke runs a unary call with the JSON codec selected.
func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, IdentityService_CreateAccount_FullMethodName, in, opts)
}

func (c *identityServiceClient) Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*TokenPairResponse, error) {
	return invoke[TokenPairResponse](ctx, c.cc, IdentityService_Authenticate_FullMethodName, in, opts)
}

func (c *identityServiceClient) RefreshTokens(ctx context.Context, in *RefreshTokensRequest, opts ...grpc.CallOption) (*TokenPairResponse, error) {
	return invoke[TokenPairResponse](ctx, c.cc, IdentityService_RefreshTokens_FullMethodName, in, opts)
}

func (c *identityServiceClient) GetAccount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, IdentityService_GetAccount_FullMethodName, in, opts)
}

func (c *identityServiceClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, IdentityService_UpdateProfile_FullMethodName, in, opts)
}

func (c *identityServiceClient) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, IdentityService_ChangePassword_FullMethodName, in, opts)
}

func (c *identityServiceClient) DeleteAccount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, IdentityService_DeleteAccount_FullMethodName, in, opts)
}

// IdentityServiceServer is the server API for IdentityService.
// All implementations must embed UnimplementedIdentityServiceServer
// for forward compatibility.
type IdentityServiceServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*AccountResponse, error)
	Authenticate(context.Context, *AuthenticateRequest) (*TokenPairResponse, error)
	RefreshTokens(context.Context, *RefreshTokensRequest) (*TokenPairResponse, error)
	GetAccount(context.Context, *Empty) (*AccountResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*AccountResponse, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*Empty, error)
	DeleteAccount(context.Context, *Empty) (*Empty, error)
	mustEmbedUnimplementedIdentityServiceServer()
}

// UnimplementedIdentityServiceServer must be embedded to have
// forward compatible implementations.
type UnimplementedIdentityServiceServer struct{}

func (UnimplementedIdentityServiceServer) CreateAccount(context.Context, *CreateAccountRequest) (*AccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateAccount not implemented")
}
func (UnimplementedIdentityServiceServer) Authenticate(context.Context, *AuthenticateRequest) (*TokenPairResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Authenticate not implemented")
}
func (UnimplementedIdentityServiceServer) RefreshTokens(context.Context, *RefreshTokensRequest) (*TokenPairResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RefreshTokens not implemented")
}
func (UnimplementedIdentityServiceServer) GetAccount(context.Context, *Empty) (*AccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAccount not implemented")
}
func (UnimplementedIdentityServiceServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*AccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpdateProfile not implemented")
}
func (UnimplementedIdentityServiceServer) ChangePassword(context.Context, *ChangePasswordRequest) (*Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ChangePassword not implemented")
}
func (UnimplementedIdentityServiceServer) DeleteAccount(context.Context, *Empty) (*Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteAccount not implemented")
}
func (UnimplementedIdentityServiceServer) mustEmbedUnimplementedIdentityServiceServer() {}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&IdentityService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(IdentityServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IdentityServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(IdentityServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// IdentityService_ServiceDesc is the grpc.ServiceDesc for IdentityService.
var IdentityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "identity.v1.IdentityService",
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateAccount", Handler: unaryHandler(IdentityService_CreateAccount_FullMethodName, IdentityServiceServer.CreateAccount)},
		{MethodName: "Authenticate", Handler: unaryHandler(IdentityService_Authenticate_FullMethodName, IdentityServiceServer.Authenticate)},
		{MethodName: "RefreshTokens", Handler: unaryHandler(IdentityService_RefreshTokens_FullMethodName, IdentityServiceServer.RefreshTokens)},
		{MethodName: "GetAccount", Handler: unaryHandler(IdentityService_GetAccount_FullMethodName, IdentityServiceServer.GetAccount)},
		{MethodName: "UpdateProfile", Handler: unaryHandler(IdentityService_UpdateProfile_FullMethodName, IdentityServiceServer.UpdateProfile)},
		{MethodName: "ChangePassword", Handler: unaryHandler(IdentityService_ChangePassword_FullMethodName, IdentityServiceServer.ChangePassword)},
		{MethodName: "DeleteAccount", Handler: unaryHandler(IdentityService_DeleteAccount_FullMethodName, IdentityServiceServer.DeleteAccount)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity.proto",
}
