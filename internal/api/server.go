// Package api serves the game over HTTP. Read endpoints are public;
// state-changing endpoints operate on the caller-supplied owner and
// kingdom ids — this is a single-player control plane, not a
// multi-tenant service.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aldric/regent/internal/engine"
	"github.com/aldric/regent/internal/realm"
)

// Server exposes the orchestrator over HTTP.
type Server struct {
	Orch *engine.Orchestrator
	Log  *slog.Logger

	// AllowOrigins configures CORS for browser frontends.
	AllowOrigins []string
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if s.Log == nil {
		s.Log = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLog())

	corsCfg := cors.DefaultConfig()
	if len(s.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = s.AllowOrigins
	} else {
		corsCfg.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Turn processing can call out to the narrative model; keep a
	// per-client budget on it.
	turnLimiter := NewRateLimiter(60, time.Minute)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/games", s.handleNewGame)
		v1.GET("/kingdoms", s.handleListKingdoms)
		v1.GET("/kingdoms/:id", s.handleGetKingdom)
		v1.DELETE("/kingdoms/:id", s.handleDeleteKingdom)

		v1.POST("/kingdoms/:id/turn", RateLimit(turnLimiter), s.handleEndTurn)
		v1.GET("/kingdoms/:id/event", s.handlePendingEvent)
		v1.POST("/kingdoms/:id/event", RateLimit(turnLimiter), s.handleResolveEvent)

		v1.GET("/kingdoms/:id/events", s.handleHistory)
		v1.GET("/kingdoms/:id/chains", s.handleChains)
		v1.GET("/kingdoms/:id/chronicle", RateLimit(turnLimiter), s.handleChronicle)

		v1.GET("/kingdoms/:id/resources", s.handleResources)
		v1.GET("/resources/:rid/trend", s.handleTrend)
		v1.POST("/resources/:rid/workers", s.handleAllocateWorkers)
		v1.POST("/resources/:rid/upgrade", s.handleUpgrade)
	}

	return r
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// fail translates domain errors to HTTP statuses.
func fail(c *gin.Context, err error) {
	var verr *realm.ValidationError
	switch {
	case errors.Is(err, realm.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, realm.ErrInsufficientFunds),
		errors.Is(err, realm.ErrMaxLevel):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func queryInt(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be " + strconv.Itoa(min) + "-" + strconv.Itoa(max)})
		return 0, false
	}
	return n, true
}

type newGameRequest struct {
	Owner      string `json:"owner" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleNewGame(c *gin.Context) {
	var req newGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	k, err := s.Orch.NewGame(c.Request.Context(), req.Owner, req.Name, realm.ParseDifficulty(req.Difficulty))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, k)
}

func (s *Server) handleListKingdoms(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner query parameter required"})
		return
	}
	kingdoms, err := s.Orch.Kingdoms(c.Request.Context(), owner)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, kingdoms)
}

func (s *Server) handleGetKingdom(c *gin.Context) {
	k, err := s.Orch.Kingdom(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

func (s *Server) handleDeleteKingdom(c *gin.Context) {
	if err := s.Orch.DeleteGame(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEndTurn(c *gin.Context) {
	result, err := s.Orch.EndTurn(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handlePendingEvent(c *gin.Context) {
	event, err := s.Orch.PendingEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

type resolveEventRequest struct {
	Choice *int `json:"choice" binding:"required"`
}

func (s *Server) handleResolveEvent(c *gin.Context) {
	var req resolveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.Orch.ResolveEvent(c.Request.Context(), c.Param("id"), *req.Choice)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 50, 1, 500)
	if !ok {
		return
	}

	events, err := s.Orch.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) handleChains(c *gin.Context) {
	chains, err := s.Orch.Chronicles(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chains)
}

func (s *Server) handleChronicle(c *gin.Context) {
	chronicle, err := s.Orch.Chronicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chronicle)
}

func (s *Server) handleResources(c *gin.Context) {
	views, err := s.Orch.Resources(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleTrend(c *gin.Context) {
	turns, ok := queryInt(c, "turns", 5, 1, 50)
	if !ok {
		return
	}

	trend, err := s.Orch.Trend(c.Request.Context(), c.Param("rid"), turns)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

type workersRequest struct {
	KingdomID string `json:"kingdom_id" binding:"required"`
	Workers   *int   `json:"workers" binding:"required"`
}

func (s *Server) handleAllocateWorkers(c *gin.Context) {
	var req workersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := s.Orch.AllocateWorkers(c.Request.Context(), req.KingdomID, c.Param("rid"), *req.Workers)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type upgradeRequest struct {
	KingdomID string `json:"kingdom_id" binding:"required"`
}

func (s *Server) handleUpgrade(c *gin.Context) {
	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := s.Orch.UpgradeResource(c.Request.Context(), req.KingdomID, c.Param("rid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
