package projectsvc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexanderramin/tasktree/internal/loader"
	"github.com/alexanderramin/tasktree/internal/remote"
	"github.com/alexanderramin/tasktree/internal/repository"
)

const maxBodySize = 4 << 20 // 4MB

// Server exposes a Service over HTTP.
type Server struct {
	svc     *Service
	router  *gin.Engine
	logger  *slog.Logger
	metrics *httpMetrics
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewServer wires the routes. Request metrics are registered on reg and
// served from /metrics together with everything else in reg.
func NewServer(svc *Service, reg *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	factory := promauto.With(reg)
	s := &Server{
		svc:    svc,
		router: gin.New(),
		logger: logger,
		metrics: &httpMetrics{
			requests: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "tasktree_http_requests_total",
				Help: "HTTP requests served by the project service.",
			}, []string{"method", "route", "code"}),
			duration: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "tasktree_http_request_duration_seconds",
				Help:    "Latency of HTTP requests served by the project service.",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "route"}),
		},
	}

	s.router.Use(gin.Recovery(), s.observe)

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	projects := s.router.Group("/projects")
	{
		projects.GET("", s.handleList)
		projects.POST("", s.handleCreate)
		projects.GET("/:id", s.handleGet)
		projects.PATCH("/:id", s.handlePatch)
	}
	return s
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("project service listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// observe records request metrics and logs each request.
func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	code := c.Writer.Status()
	elapsed := time.Since(start)
	s.metrics.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(code)).Inc()
	s.metrics.duration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
	s.logger.Debug("http request",
		"method", c.Request.Method,
		"route", route,
		"status", code,
		"latency_ms", elapsed.Milliseconds(),
	)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type projectSummary struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Server) handleList(c *gin.Context) {
	projects, err := s.svc.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectSummary{
			ID:        p.ID,
			Title:     p.Title,
			Status:    string(p.Status),
			Progress:  p.Progress,
			UpdatedAt: p.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"projects": out, "count": len(out)})
}

func (s *Server) handleGet(c *gin.Context) {
	p, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreate(c *gin.Context) {
	data, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := loader.Decode(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := s.svc.Create(c.Request.Context(), p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handlePatch(c *gin.Context) {
	var body remote.Body
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	p, err := s.svc.ApplyPatch(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	return c.GetRawData()
}

// fail maps service errors onto status codes.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidProject), errors.Is(err, ErrInvalidPatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrProjectExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
