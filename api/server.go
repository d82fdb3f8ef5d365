// Package api exposes the interview engine over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apperrors "github.com/novexa-ai/interviewd/errors"
	"github.com/novexa-ai/interviewd/interview"
	"github.com/novexa-ai/interviewd/pkg/logging"
	"github.com/novexa-ai/interviewd/summary"
)

// Server wires the HTTP routes to the engine and summarizer.
type Server struct {
	echo       *echo.Echo
	engine     *interview.Engine
	summarizer *summary.Summarizer
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(engine *interview.Engine, summarizer *summary.Summarizer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:       e,
		engine:     engine,
		summarizer: summarizer,
		logger:     logging.WithComponent("api"),
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))

	e.GET("/status", s.getStatus)

	g := e.Group("/api/v1")
	g.POST("/interviews", s.startInterview)
	g.POST("/interviews/answer", s.submitAnswer)
	g.POST("/interviews/end", s.endInterview)
	g.POST("/feedback", s.answerFeedback)

	return s
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler; used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type statusResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
	Time           string `json:"time"`
}

// GET /status
func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Status:         "ok",
		ActiveSessions: s.engine.Store().Len(),
		Time:           time.Now().UTC().Format(time.RFC3339),
	})
}

type startRequest struct {
	Name           string `json:"name"`
	Role           string `json:"role"`
	Branch         string `json:"branch"`
	Specialization string `json:"specialization"`
	Difficulty     string `json:"difficulty"`
}

type startResponse struct {
	SessionID    string `json:"session_id"`
	NextQuestion string `json:"next_question"`
}

// POST /api/v1/interviews
func (s *Server) startInterview(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	res, err := s.engine.Start(c.Request().Context(), interview.StartRequest{
		Name:           req.Name,
		Role:           req.Role,
		Branch:         req.Branch,
		Specialization: req.Specialization,
		Difficulty:     req.Difficulty,
	})
	if err != nil {
		return s.mapError(c, err)
	}

	return c.JSON(http.StatusCreated, startResponse{
		SessionID:    res.SessionID,
		NextQuestion: res.NextQuestion,
	})
}

type answerRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type answerResponse struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Text      string `json:"text"`
}

// POST /api/v1/interviews/answer
func (s *Server) submitAnswer(c echo.Context) error {
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, errorBody("session_id is required"))
	}

	res, err := s.engine.SubmitAnswer(c.Request().Context(), req.SessionID, req.Answer)
	if err != nil {
		return s.mapError(c, err)
	}

	return c.JSON(http.StatusOK, answerResponse{
		SessionID: res.SessionID,
		Action:    string(res.Action),
		Text:      res.Text,
	})
}

type endRequest struct {
	SessionID string `json:"session_id"`
}

type endResponse struct {
	SessionID string                  `json:"session_id"`
	Summary   *summary.SessionSummary `json:"summary"`
}

// POST /api/v1/interviews/end
func (s *Server) endInterview(c echo.Context) error {
	var req endRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, errorBody("session_id is required"))
	}

	ctx := c.Request().Context()
	sess, err := s.engine.End(ctx, req.SessionID)
	if err != nil {
		return s.mapError(c, err)
	}

	report := s.summarizer.Generate(ctx, sess)

	if err := s.engine.Discard(ctx, req.SessionID); err != nil {
		s.logger.Warn("failed to discard finished session", "session_id", req.SessionID, "error", err)
	}

	return c.JSON(http.StatusOK, endResponse{SessionID: req.SessionID, Summary: report})
}

type feedbackRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Role     string `json:"role"`
}

// POST /api/v1/feedback
func (s *Server) answerFeedback(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.Question == "" || req.Answer == "" {
		return c.JSON(http.StatusBadRequest, errorBody("question and answer are required"))
	}
	if req.Role == "" {
		req.Role = "general"
	}

	res, err := s.summarizer.Feedback(c.Request().Context(), req.Question, req.Answer, req.Role)
	if err != nil {
		s.logger.Error("feedback generation failed", "error", err)
		return c.JSON(http.StatusBadGateway, errorBody("feedback generation failed"))
	}

	return c.JSON(http.StatusOK, res)
}

// mapError translates engine errors into HTTP status codes.
func (s *Server) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound), errors.Is(err, apperrors.ErrRoleNotFound):
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperrors.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, errorBody(err.Error()))
	default:
		s.logger.Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
