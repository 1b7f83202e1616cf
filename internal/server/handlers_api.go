package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wavespace/internal/quiz"
)

type quizURI struct {
	ID string `uri:"id" binding:"required"`
}

type resultURI struct {
	ID            string `uri:"id" binding:"required"`
	ParticipantID string `uri:"participant_id" binding:"required"`
}

type joinRequest struct {
	JoinCode string `json:"join_code" binding:"required,joincode"`
	Nickname string `json:"nickname" binding:"nickname"`
}

type answerRequest struct {
	QuestionID     string `json:"question_id" binding:"required"`
	SelectedOption *int   `json:"selected_option" binding:"required"`
}

type leaderboardQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

var joinMessages = bindMessages{
	"JoinCode": {
		"required": "join code is required",
		"joincode": "join code must be 6 letters or digits",
	},
	"Nickname": {
		"nickname": "nickname contains unsupported characters",
	},
}

var answerMessages = bindMessages{
	"QuestionID": {
		"required": "question_id is required",
	},
	"SelectedOption": {
		"required": "selected_option is required",
	},
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleJoin(c *gin.Context) {
	var req joinRequest
	if !bindJSON(c, &req, joinMessages, "invalid join request") {
		return
	}
	participant, err := s.svc.Join(c.Request.Context(), req.JoinCode, req.Nickname)
	if err != nil {
		s.respondError(c, err)
		return
	}
	token, err := s.tokens.Issue(participant.QuizID, participant.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"participant_id": participant.ID,
		"quiz_id":        participant.QuizID,
		"nickname":       participant.Nickname,
		"token":          token,
	})
}

func (s *Server) handleAnswer(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req answerRequest
	if !bindJSON(c, &req, answerMessages, "invalid answer") {
		return
	}
	receipt, err := s.svc.SubmitAnswer(c.Request.Context(), claims.ParticipantID, req.QuestionID, *req.SelectedOption)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accepted": receipt.Accepted,
		"reason":   string(receipt.Reason),
	})
}

func (s *Server) handlePublicSnapshot(c *gin.Context) {
	var uri quizURI
	if !bindURI(c, &uri) {
		return
	}
	snap, err := s.svc.Snapshot(c.Request.Context(), uri.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildSnapshot(snap, false))
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	var uri quizURI
	if !bindURI(c, &uri) {
		return
	}
	var query leaderboardQuery
	if !bindQuery(c, &query) {
		return
	}
	ranked, err := s.svc.Leaderboard(c.Request.Context(), uri.ID, query.Limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": rankedViews(ranked)})
}

func (s *Server) handleResult(c *gin.Context) {
	var uri resultURI
	if !bindURI(c, &uri) {
		return
	}
	snap, err := s.svc.Snapshot(c.Request.Context(), uri.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	result, ok := snap.ResultFor(uri.ParticipantID)
	if !ok {
		s.respondError(c, quiz.ErrParticipantNotFound)
		return
	}
	c.JSON(http.StatusOK, buildResult(snap.Quiz.Status, result))
}
