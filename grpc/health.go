package grpc

import (
	"fmt"
	"net"

	"drive-linkbot/models"

	"github.com/rs/zerolog"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// PublisherService is the health service name prefix for per-guild publishers.
const PublisherService = "linkbot.Publisher"

// HealthServer exposes the standard gRPC health protocol. The overall
// status follows the Discord session; each guild's publisher is reported as
// "linkbot.Publisher/<guild_id>" and follows its last cycle.
type HealthServer struct {
	addr   string
	server *grpc.Server
	health *health.Server
	lis    net.Listener
	log    zerolog.Logger
}

// NewHealthServer creates a health server that will listen on addr.
func NewHealthServer(addr string, log zerolog.Logger) *HealthServer {
	h := &HealthServer{
		addr:   addr,
		server: grpc.NewServer(),
		health: health.NewServer(),
		log:    log.With().Str("component", "health").Logger(),
	}
	healthpb.RegisterHealthServer(h.server, h.health)
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Start listens and serves in the background.
func (h *HealthServer) Start() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.addr, err)
	}
	h.lis = lis
	go func() {
		if err := h.server.Serve(lis); err != nil {
			h.log.Error().Err(err).Msg("Health server stopped")
		}
	}()
	h.log.Info().Str("addr", lis.Addr().String()).Msg("Health server listening")
	return nil
}

// Addr returns the bound address once started.
func (h *HealthServer) Addr() string {
	if h.lis == nil {
		return h.addr
	}
	return h.lis.Addr().String()
}

// SetServing sets the overall status.
func (h *HealthServer) SetServing(serving bool) {
	h.health.SetServingStatus("", status(serving))
}

// ObserveCycle reports the guild publisher as serving after a successful
// cycle and not serving after a failed one.
func (h *HealthServer) ObserveCycle(run models.Run) {
	h.health.SetServingStatus(ServiceName(run.GuildID), status(run.Succeeded()))
}

// ServiceName is the health service name for a guild's publisher.
func ServiceName(guildID string) string {
	return PublisherService + "/" + guildID
}

// Stop shuts the server down, marking every service as not serving.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}

func status(serving bool) healthpb.HealthCheckResponse_ServingStatus {
	if serving {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
