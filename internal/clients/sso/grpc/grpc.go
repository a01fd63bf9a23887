package grpc

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/services/auth"
	"context"
	"log/slog"
	"time"

	ssov1 "github.com/AlexeySHA256/protos/gen/go/sso"
	grpclogging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpcretry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const timeParseLayout = "2006-01-02 15:04:05.999999 -0700 MST"

type Client struct {
	api   ssov1.AuthClient
	conn  *grpc.ClientConn
	log   *slog.Logger
	appId int32
}

/*
	New creates a new Client instance.

It takes a logger, the application id registered in SSO, an address of the gRPC server,
a timeout for retry call, and a retries count as parameters.
*/
func New(
	log *slog.Logger,
	appId int32,
	addr string,
	timeout time.Duration,
	retriesCount int,
) (*Client, error) {
	retryOpts := []grpcretry.CallOption{
		grpcretry.WithPerRetryTimeout(timeout),
		grpcretry.WithMax(uint(retriesCount)),
		grpcretry.WithCodes(codes.Aborted, codes.DeadlineExceeded, codes.Unavailable),
	}
	logOpts := []grpclogging.Option{
		grpclogging.WithLogOnEvents(grpclogging.StartCall, grpclogging.FinishCall),
	}
	cc, err := grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			grpcretry.UnaryClientInterceptor(retryOpts...),
			grpclogging.UnaryClientInterceptor(InterceptorLogger(log), logOpts...),
		),
	)
	if err != nil {
		return nil, err
	}
	return newWithAPI(log, appId, ssov1.NewAuthClient(cc), cc), nil
}

func newWithAPI(log *slog.Logger, appId int32, api ssov1.AuthClient, conn *grpc.ClientConn) *Client {
	return &Client{
		api:   api,
		conn:  conn,
		log:   log,
		appId: appId,
	}
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// mapError converts gRPC status codes into auth errors. notFound is what
// codes.NotFound means for the calling method.
func mapError(err error, notFound error) error {
	grpcErr, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch grpcErr.Code() {
	case codes.NotFound:
		return notFound
	case codes.InvalidArgument:
		return auth.NewInvalidDataError(grpcErr.Message())
	case codes.AlreadyExists:
		return auth.ErrUserAlreadyExists
	case codes.Unauthenticated:
		return auth.ErrInvalidCredentials
	}
	return err
}

func (c *Client) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	const op = "grpc.Client.IsAdmin"
	log := c.log.With("op", op)
	resp, err := c.api.IsAdmin(ctx, &ssov1.IsAdminRequest{UserId: userID})
	if err != nil {
		log.Error("Error", "errMsg", err.Error())
		return false, mapError(err, auth.ErrUserNotFound)
	}
	return resp.GetIsAdmin(), nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthTokens, error) {
	const op = "grpc.Client.Login"
	log := c.log.With("op", op)
	resp, err := c.api.Login(ctx, &ssov1.LoginRequest{Email: email, Password: password, AppId: c.appId})
	if err != nil {
		log.Error("Error", "errMsg", err.Error())
		return nil, mapError(err, auth.ErrInvalidCredentials)
	}
	return &models.AuthTokens{AccessToken: resp.GetAccessToken(), RefreshToken: resp.GetRefreshToken()}, nil
}

func (c *Client) Register(ctx context.Context, email, username, password string) (*auth.SignupData, error) {
	const op = "grpc.Client.Register"
	log := c.log.With("op", op)
	resp, err := c.api.Register(
		ctx,
		&ssov1.RegisterRequest{Email: email, Password: password, Username: username},
	)
	if err != nil {
		log.Error("Error", "errMsg", err.Error())
		return nil, mapError(err, auth.ErrUserNotFound)
	}
	return &auth.SignupData{UserID: resp.GetUserId(), ActivationToken: resp.GetActivationToken()}, nil
}

type ssoUser interface {
	GetId() int64
	GetEmail() string
	GetUsername() string
	GetIsActive() bool
	GetCreatedAt() string
	GetUpdatedAt() string
}

func toUser(user ssoUser) (*models.User, error) {
	createdAt, err := time.Parse(timeParseLayout, user.GetCreatedAt())
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(timeParseLayout, user.GetUpdatedAt())
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:        user.GetId(),
		Email:     user.GetEmail(),
		Username:  user.GetUsername(),
		IsActive:  user.GetIsActive(),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if withRole, ok := user.(interface{ GetRole() string }); ok {
		u.Role = withRole.GetRole()
	}
	return u, nil
}

func (c *Client) GetUser(ctx context.Context, params auth.GetUserParams) (*models.User, error) {
	const op = "grpc.Client.GetUser"
	log := c.log.With("op", op)
	resp, err := c.api.GetUser(ctx, &ssov1.GetUserRequest{Id: params.ID, Email: params.Email, IsActive: params.IsActive})
	if err != nil {
		mapped := mapError(err, auth.ErrUserNotFound)
		if mapped == err {
			log.Error("Error", "errMsg", err.Error())
		}
		return nil, mapped
	}
	return toUser(resp.GetUser())
}

func (c *Client) ActivateUser(ctx context.Context, plainToken string) (*models.User, error) {
	const op = "grpc.Client.ActivateUser"
	log := c.log.With("op", op)
	resp, err := c.api.ActivateUser(ctx, &ssov1.ActivateUserRequest{ActivationToken: plainToken})
	if err != nil {
		grpcErr, ok := status.FromError(err)
		if ok && grpcErr.Code() == codes.AlreadyExists {
			return nil, auth.ErrUserAlreadyActivated
		}
		mapped := mapError(err, auth.ErrUserNotFound)
		if mapped == err {
			log.Error("Error", "errMsg", err.Error())
		}
		return nil, mapped
	}
	return toUser(resp.GetUser())
}

func (c *Client) NewActivationToken(ctx context.Context, email string) (string, error) {
	const op = "grpc.Client.NewActivationToken"
	log := c.log.With("op", op)
	resp, err := c.api.NewActivationToken(ctx, &ssov1.NewActivationTokenRequest{Email: email})
	if err != nil {
		log.Error("Error", "errMsg", err.Error())
		return "", mapError(err, auth.ErrUserNotFound)
	}
	return resp.GetActivationToken(), nil
}

// Adapter for grpclogging.Logger used to adapt it to slog.Logger
func InterceptorLogger(log *slog.Logger) grpclogging.Logger {
	return grpclogging.LoggerFunc(
		func(ctx context.Context, level grpclogging.Level, msg string, fields ...any) {
			log.Log(ctx, slog.Level(level), msg, fields...)
		},
	)
}
