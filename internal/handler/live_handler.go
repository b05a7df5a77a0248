package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/realtime"
)

type jobSearcher interface {
	Search(ctx context.Context, filters models.FilterState) (*dto.JobListResponse, error)
}

// LiveConfig tunes websocket sessions.
type LiveConfig struct {
	AllowedOrigins []string
	PingInterval   time.Duration
	SearchDebounce time.Duration
}

// LiveHandler upgrades dashboard connections onto the job feed.
type LiveHandler struct {
	hub      *realtime.Hub
	searcher jobSearcher
	cfg      LiveConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewLiveHandler constructs the handler.
func NewLiveHandler(hub *realtime.Hub, searcher jobSearcher, cfg LiveConfig, logger *zap.Logger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &LiveHandler{hub: hub, searcher: searcher, cfg: cfg, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Serve godoc
// @Summary Live job feed
// @Description Websocket. Pushes job_status and job_created events; accepts search and clear messages. Pass the bearer token as the token query parameter; the feed closes with code 4001 when it expires.
// @Tags Jobs
// @Param token query string true "Bearer token"
// @Router /ws/jobs [get]
func (h *LiveHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("live feed upgrade failed", zap.Error(err))
		return
	}

	actor := ""
	var expiresAt time.Time
	if claims := claimsFromContext(c); claims != nil {
		actor = claims.Actor()
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}
	// Detached from request cancellation; the forwarded token stays on ctx.
	ctx := context.WithoutCancel(c.Request.Context())
	client := realtime.NewClient(ctx, h.hub, conn, h.searcher.Search, realtime.ClientConfig{
		Actor:          actor,
		PingInterval:   h.cfg.PingInterval,
		SearchDebounce: h.cfg.SearchDebounce,
		ExpiresAt:      expiresAt,
	})
	go client.Serve()
}

func (h *LiveHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
