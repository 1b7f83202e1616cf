package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wavespace/internal/quiz"
)

// respondError maps service errors to a status and a stable error code.
func (s *Server) respondError(c *gin.Context, err error) {
	var transition *quiz.TransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusConflict, gin.H{
			"error":                  "invalid_transition",
			"message":                transition.Error(),
			"status":                 transition.From.Status.String(),
			"current_question_index": transition.From.Index,
		})
		return
	}

	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, quiz.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, quiz.ErrInvalidQuiz):
		status, code = http.StatusBadRequest, "invalid_quiz"
	case errors.Is(err, quiz.ErrQuizNotFound):
		status, code = http.StatusNotFound, "quiz_not_found"
	case errors.Is(err, quiz.ErrParticipantNotFound):
		status, code = http.StatusNotFound, "participant_not_found"
	case errors.Is(err, quiz.ErrQuizNotStarted):
		status, code = http.StatusConflict, "quiz_not_started"
	case errors.Is(err, quiz.ErrQuizFull):
		status, code = http.StatusConflict, "quiz_full"
	case errors.Is(err, quiz.ErrQuizEnded):
		status, code = http.StatusConflict, "quiz_ended"
	case errors.Is(err, quiz.ErrNicknameRequired):
		status, code = http.StatusBadRequest, "nickname_required"
	case errors.Is(err, quiz.ErrNicknameTooLong):
		status, code = http.StatusBadRequest, "nickname_too_long"
	case errors.Is(err, quiz.ErrTransient):
		status, code = http.StatusServiceUnavailable, "try_again"
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": code})
		return
	}
	c.JSON(status, gin.H{"error": code, "message": err.Error()})
}
