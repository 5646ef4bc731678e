package moderation

import (
	"google.golang.org/grpc"

	"github.com/oggyb/ridemate/internal/api"
	"github.com/oggyb/ridemate/internal/app"
)

// Registrar ties the Moderation service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(s *grpc.Server) {
	api.RegisterModerationServiceServer(s, NewHandler(NewService(r.appCtx)))
}
