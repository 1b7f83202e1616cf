package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wavespace/internal/quiz"
	"wavespace/internal/web"
)

const (
	defaultQuizzesPerPage = 20
	maxQuizzesPerPage     = 100
)

type questionRequest struct {
	Text             string   `json:"text" binding:"required"`
	Options          []string `json:"options" binding:"required,len=4,dive,required"`
	CorrectOption    *int     `json:"correct_option" binding:"required,min=0,max=3"`
	TimeLimitSeconds int      `json:"time_limit_seconds" binding:"omitempty,min=5,max=600"`
}

type createQuizRequest struct {
	Title     string            `json:"title" binding:"required,max=200"`
	Questions []questionRequest `json:"questions" binding:"required,min=1,dive"`
}

type commandURI struct {
	ID      string `uri:"id" binding:"required"`
	Command string `uri:"command" binding:"required"`
}

type commandRequest struct {
	Index *int `json:"index" binding:"omitempty,min=0"`
	Force bool `json:"force"`
}

var createQuizMessages = bindMessages{
	"Title": {
		"required": "title is required",
		"max":      "title must be 200 characters or fewer",
	},
	"Questions": {
		"required": "at least one question is required",
		"min":      "at least one question is required",
	},
	"Text": {
		"required": "question text is required",
	},
	"Options": {
		"required": "every question needs 4 options",
		"len":      "every question needs 4 options",
	},
	"CorrectOption": {
		"required": "correct_option is required",
		"min":      "correct_option must be between 0 and 3",
		"max":      "correct_option must be between 0 and 3",
	},
	"TimeLimitSeconds": {
		"min": "time_limit_seconds must be between 5 and 600",
		"max": "time_limit_seconds must be between 5 and 600",
	},
}

func (s *Server) handleCreateQuiz(c *gin.Context) {
	var req createQuizRequest
	if !bindJSON(c, &req, createQuizMessages, "invalid quiz") {
		return
	}
	draft := quiz.Draft{Title: req.Title}
	for _, q := range req.Questions {
		draft.Questions = append(draft.Questions, quiz.DraftQuestion{
			Text:             q.Text,
			Options:          q.Options,
			CorrectOption:    *q.CorrectOption,
			TimeLimitSeconds: q.TimeLimitSeconds,
		})
	}
	created, questions, err := s.svc.CreateQuiz(c.Request.Context(), draft)
	if err != nil {
		s.respondError(c, err)
		return
	}
	views := make([]questionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, questionViewOf(question, true))
	}
	c.JSON(http.StatusCreated, gin.H{
		"quiz":      quizViewOf(created, len(questions)),
		"questions": views,
	})
}

func (s *Server) handleListQuizzes(c *gin.Context) {
	page, perPage := parsePagination(c, defaultQuizzesPerPage, maxQuizzesPerPage)
	summaries, total, err := s.svc.ListQuizzes(c.Request.Context(), (page-1)*perPage, perPage)
	if err != nil {
		s.respondError(c, err)
		return
	}
	items := make([]web.QuizSummary, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, web.QuizSummary{
			ID:            summary.Quiz.ID,
			Title:         summary.Quiz.Title,
			JoinCode:      summary.Quiz.JoinCode,
			Status:        summary.Quiz.Status.String(),
			QuestionCount: summary.QuestionCount,
			Participants:  summary.Participants,
			CreatedAt:     web.FormatTime(summary.Quiz.CreatedAt),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"quizzes":    items,
		"pagination": buildPaginationData(page, perPage, total),
	})
}

func (s *Server) handleHostSnapshot(c *gin.Context) {
	var uri quizURI
	if !bindURI(c, &uri) {
		return
	}
	snap, err := s.svc.Snapshot(c.Request.Context(), uri.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildSnapshot(snap, true))
}

func (s *Server) handleDeleteQuiz(c *gin.Context) {
	var uri quizURI
	if !bindURI(c, &uri) {
		return
	}
	if err := s.svc.DeleteQuiz(c.Request.Context(), uri.ID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCommand(c *gin.Context) {
	var uri commandURI
	if !bindURI(c, &uri) {
		return
	}
	kind, err := quiz.ParseCommand(uri.Command)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_command", "message": err.Error()})
		return
	}
	var req commandRequest
	if !bindOptionalJSON(c, &req, nil, "invalid command") {
		return
	}
	result, err := s.svc.Apply(c.Request.Context(), uri.ID, quiz.Command{Kind: kind, Index: req.Index, Force: req.Force})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":                 result.Status.String(),
		"current_question_index": result.Index,
		"phase_started_at":       result.PhaseStartedAt,
	})
}
