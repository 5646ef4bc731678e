package chat

import (
	"google.golang.org/grpc"

	"github.com/oggyb/ridemate/internal/api"
	"github.com/oggyb/ridemate/internal/app"
)

// Registrar ties the Chat service into the gRPC server
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewService(appCtx)}
}

// Service returns the service instance, shared with the websocket surface.
func (r *Registrar) Service() *Service { return r.svc }

func (r *Registrar) Register(s *grpc.Server) {
	api.RegisterChatServiceServer(s, NewHandler(r.svc))
}
