package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"newsrag/internal/domain"
	"newsrag/internal/logger"
)

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) fail(c echo.Context, err error) error {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request().Context(), s.logger).Error("request error", "path", c.Path(), "status", status, "error", err)
	}
	return c.JSON(status, errorResponse{Error: err.Error(), Code: string(domain.CodeOf(err))})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createSession(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]string{"sessionId": s.port.CreateSession()})
}

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, domain.Errorf(domain.ErrValidation, "invalid request body"))
	}
	if strings.TrimSpace(req.Query) == "" {
		return s.fail(c, domain.Errorf(domain.ErrValidation, "query is required"))
	}
	res, err := s.port.Chat(c.Request().Context(), req.Query, req.SessionID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) history(c echo.Context) error {
	id := c.Param("id")
	turns, err := s.port.History(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"sessionId": id, "history": turns})
}

func (s *Server) deleteSession(c echo.Context) error {
	deleted, err := s.port.DeleteSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) articles(c echo.Context) error {
	list := s.port.Articles()
	return c.JSON(http.StatusOK, map[string]any{"count": len(list), "articles": list})
}

func (s *Server) stats(c echo.Context) error {
	st, err := s.port.Stats(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (s *Server) ingest(c echo.Context) error {
	report, err := s.port.Ingest(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
