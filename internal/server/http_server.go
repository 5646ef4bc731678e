package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"google.golang.org/grpc/metadata"

	"github.com/oggyb/ridemate/internal/api"
	"github.com/oggyb/ridemate/internal/app"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/notify"
	"github.com/oggyb/ridemate/internal/service/chat"
	"github.com/oggyb/ridemate/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HTTPServer serves health checks and websocket room subscriptions.
type HTTPServer struct {
	appCtx *app.AppContext
	authn  *Authenticator
	chat   *chat.Service
	engine *gin.Engine
}

func NewHTTPServer(appCtx *app.AppContext, chatSvc *chat.Service) *HTTPServer {
	if appCtx.Config.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &HTTPServer{
		appCtx: appCtx,
		authn:  NewAuthenticator(appCtx),
		chat:   chatSvc,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/ws/rooms/:id", s.subscribe)
	return s
}

func (s *HTTPServer) Handler() http.Handler { return s.engine }

// Start serves on the configured address until ctx is done.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%s", s.appCtx.Config.HTTP.Host, s.appCtx.Config.HTTP.Port)
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.appCtx.Logger.Info("starting HTTP server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) health(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{"db": "ok", "redis": "ok"}
	healthy := true

	if sqlDB, err := s.appCtx.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["db"] = "unavailable"
		healthy = false
	}
	if err := s.appCtx.RedisCache.Ping(ctx); err != nil {
		checks["redis"] = "unavailable"
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}

// subscribe upgrades to a websocket carrying the room's events, using the
// same rules as the gRPC Subscribe stream.
func (s *HTTPServer) subscribe(c *gin.Context) {
	ctx := c.Request.Context()

	token := c.Query("token")
	if token == "" {
		token = bearerToken(metadata.Pairs(authorizationHeader, c.GetHeader("Authorization")))
	}
	sess, err := s.authn.Authenticate(ctx, token, c.Query("client_id"))
	if err == nil && sess.Suspended() {
		err = svcErr.ErrSuspended
	}
	if err != nil {
		writeError(c, err)
		return
	}

	sub, err := s.chat.Subscribe(ctx, sess, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.appCtx.Logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	s.pump(conn, sess, sub.Events())
}

// pump writes events until the peer goes away or an event ends the
// subscription. Inbound frames are read only to track liveness.
func (s *HTTPServer) pump(conn *websocket.Conn, sess session.Session, events <-chan notify.Event) {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(api.EventFromNotify(e)); err != nil {
				return
			}
			if chat.Ends(e, sess.UserID) {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "subscription ended"),
					time.Now().Add(writeWait))
				return
			}
		}
	}
}

func writeError(c *gin.Context, err error) {
	var de *svcErr.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(httpStatus(de.Kind), gin.H{"error": de.Msg, "reason": de.Reason})
}

func httpStatus(k svcErr.Kind) int {
	switch k {
	case svcErr.KindValidation:
		return http.StatusBadRequest
	case svcErr.KindConflict:
		return http.StatusConflict
	case svcErr.KindAuthorization:
		return http.StatusForbidden
	case svcErr.KindUnauthenticated:
		return http.StatusUnauthorized
	case svcErr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
