package server

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"wavespace/internal/web"
)

func (s *Server) handleHome(c *gin.Context) {
	s.renderPage(c, web.Home())
}

func (s *Server) handleDisplay(c *gin.Context) {
	var uri quizURI
	if !bindURI(c, &uri) {
		return
	}
	if _, err := s.svc.Quiz(c.Request.Context(), uri.ID); err != nil {
		s.respondError(c, err)
		return
	}
	s.renderPage(c, web.Display(uri.ID))
}

func (s *Server) renderPage(c *gin.Context, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		s.log.Sugar().Warnw("render page failed", "path", c.Request.URL.Path, "error", err)
	}
}
