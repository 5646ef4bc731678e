package room

import (
	"google.golang.org/grpc"

	"github.com/oggyb/ridemate/internal/api"
	"github.com/oggyb/ridemate/internal/app"
)

// Registrar ties the Room service into the gRPC server
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the Room service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

// Service returns the service instance, shared with the sweeper.
func (r *Registrar) Service() *Service { return r.svc }

// Register attaches the Room service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	api.RegisterRoomServiceServer(s, NewHandler(r.svc))
}
