package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/s-fanou/feed/internal/common"
	"github.com/s-fanou/feed/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userId"

var publicServices = []string{
	healthpb.Health_ServiceDesc.ServiceName,
}

func isPublic(fullMethod string) bool {
	for _, svc := range publicServices {
		if strings.HasPrefix(fullMethod, "/"+svc+"/") {
			return true
		}
	}
	return false
}

// UserIDFromContext returns the user id the auth interceptors attached.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func (s *Server) authenticate(ctx context.Context) (context.Context, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationMetadataKey); len(values) > 0 {
			header = values[0]
		}
	}

	claims, err := s.verifier.Authenticate(ctx, header)
	if err != nil {
		return nil, authStatus(err)
	}
	return context.WithValue(ctx, userIDKey, claims.UserID), nil
}

func authStatus(err error) error {
	if te := auth.TokenError(err); te != nil {
		return status.Error(codes.Unauthenticated, "token verification failed: "+te.Error())
	}
	if errors.Is(err, common.ErrMissingAuthHeader) || errors.Is(err, common.ErrorUnauthorized) {
		return status.Error(codes.Unauthenticated, "not authenticated")
	}
	return status.Error(codes.Internal, "internal error")
}

func (s *Server) authUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if isPublic(info.FullMethod) {
		return handler(ctx, req)
	}
	ctx, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *authedStream) Context() context.Context { return w.ctx }

func (s *Server) authStreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if isPublic(info.FullMethod) {
		return handler(srv, ss)
	}
	ctx, err := s.authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
}

func (s *Server) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if code := status.Code(err); code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "grpc call failed", "method", info.FullMethod, "code", code.String(), "error", err)
	} else {
		s.logger.Debug(ctx, "grpc call", "method", info.FullMethod, "code", code.String())
	}
	return resp, err
}
