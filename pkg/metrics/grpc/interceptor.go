package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/RigelNana/cinexnema/pkg/metrics"
)

func statusLabel(err error) string {
	if err == nil {
		return "success"
	}
	st, _ := status.FromError(err)
	return st.Code().String()
}

// UnaryServerInterceptor records unary calls, used by the health server.
func UnaryServerInterceptor(serviceName string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		metrics.RecordRequest(serviceName, info.FullMethod, statusLabel(err), time.Since(start))
		return resp, err
	}
}

// StreamServerInterceptor records streams such as health Watch.
func StreamServerInterceptor(serviceName string) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		metrics.RecordRequest(serviceName, info.FullMethod, statusLabel(err), time.Since(start))
		return err
	}
}
