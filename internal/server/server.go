package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/agenthands/shelfgraph/internal/core"
	"github.com/agenthands/shelfgraph/internal/core/explain"
	"github.com/agenthands/shelfgraph/internal/core/recommend"
	"github.com/agenthands/shelfgraph/internal/driver"
)

const (
	requestIDHeader = "X-Request-ID"
	// retryAfterSeconds is sent with 503 so clients back off at least as long
	// as a tripped breaker stays open.
	retryAfterSeconds = "5"
)

type Server struct {
	Shelf  *core.Shelf
	logger zerolog.Logger
}

func NewServer(shelf *core.Shelf, logger zerolog.Logger) *Server {
	return &Server{
		Shelf:  shelf,
		logger: logger.With().Str("component", "http").Logger(),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := r.Group("/users/:id")
	users.GET("/recommendations", s.recommend(recommend.StrategyCollaborative))
	users.GET("/recommendations/genres", s.recommend(recommend.StrategyGenre))
	users.GET("/recommendations/following", s.recommend(recommend.StrategySocial))
	users.GET("/recommendations/authors", s.recommend(recommend.StrategyAuthor))
	users.GET("/recommendations/hybrid", s.recommend(recommend.StrategyHybrid))
	users.GET("/recommendations/hybrid/explain", s.ExplainHybrid)

	r.GET("/books/trending", s.recommend(recommend.StrategyTrending))
	r.GET("/books/:id/similar", s.recommend(recommend.StrategySimilar))

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) recommend(strategy recommend.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := parseLimit(c, strategy)
		if err != nil {
			s.fail(c, err)
			return
		}

		results, err := s.Shelf.Recommender.Recommend(c.Request.Context(), strategy, c.Param("id"), limit)
		if err != nil {
			s.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func (s *Server) ExplainHybrid(c *gin.Context) {
	limit, err := parseLimit(c, recommend.StrategyHybrid)
	if err != nil {
		s.fail(c, err)
		return
	}

	out, err := s.Shelf.ExplainHybrid(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// parseLimit reads ?limit=, falling back to the strategy default when the
// parameter is absent.
func parseLimit(c *gin.Context, strategy recommend.Strategy) (int, error) {
	raw, ok := c.GetQuery("limit")
	if !ok {
		return recommend.DefaultLimit(strategy), nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(recommend.ErrInvalidInput, err)
	}
	return limit, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, driver.ErrUnavailable):
		status = http.StatusServiceUnavailable
		msg = "graph database unavailable, retry later"
		c.Header("Retry-After", retryAfterSeconds)
	case errors.Is(err, explain.ErrDisabled):
		status = http.StatusNotImplemented
		msg = err.Error()
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).
			Str("request_id", c.GetString(requestIDHeader)).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
