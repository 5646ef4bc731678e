package account

import (
	"google.golang.org/grpc"

	"github.com/oggyb/ridemate/internal/api"
	"github.com/oggyb/ridemate/internal/app"
)

// Registrar ties the Account service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(s *grpc.Server) {
	api.RegisterAccountServiceServer(s, NewHandler(NewService(r.appCtx)))
}
