package database

import (
	"fmt"
	"net"

	"video_moderation_service/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StartHealthServer serve the standard grpc health service on addr.
// 回傳的 health.Server 讓呼叫端在依賴斷線時切換 NOT_SERVING
func StartHealthServer(addr, serviceName string) (*grpc.Server, *health.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	go func() {
		logger.Log.Info("gRPC health server listening", zap.String("addr", addr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Log.Error("gRPC health server stopped", zap.Error(err))
		}
	}()

	return grpcServer, hs, nil
}
