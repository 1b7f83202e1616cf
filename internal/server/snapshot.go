package server

import (
	"time"

	"wavespace/internal/quiz"
	"wavespace/internal/session"
)

type quizView struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	JoinCode             string    `json:"join_code"`
	Status               string    `json:"status"`
	CurrentQuestionIndex int       `json:"current_question_index"`
	PhaseStartedAt       time.Time `json:"phase_started_at"`
	QuestionCount        int       `json:"question_count"`
}

type questionView struct {
	ID               string     `json:"id"`
	Text             string     `json:"text"`
	Options          []string   `json:"options"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	CorrectOption    *int       `json:"correct_option,omitempty"`
}

type rankedView struct {
	ParticipantID string `json:"participant_id"`
	Nickname      string `json:"nickname"`
	Score         int    `json:"score"`
	Rank          int    `json:"rank"`
}

type snapshotView struct {
	Quiz             quizView       `json:"quiz"`
	Question         *questionView  `json:"question,omitempty"`
	ParticipantCount int            `json:"participant_count"`
	AnswerCount      int            `json:"answer_count"`
	OptionCounts     []int          `json:"option_counts,omitempty"`
	Leaderboard      []rankedView   `json:"leaderboard,omitempty"`
	Podium           []rankedView   `json:"podium,omitempty"`
	NextCommand      string         `json:"next_command,omitempty"`
	Questions        []questionView `json:"questions,omitempty"`
	Participants     []rankedView   `json:"participants,omitempty"`
}

func quizViewOf(q quiz.Quiz, questionCount int) quizView {
	return quizView{
		ID:                   q.ID,
		Title:                q.Title,
		JoinCode:             q.JoinCode,
		Status:               q.Status.String(),
		CurrentQuestionIndex: q.Index,
		PhaseStartedAt:       q.PhaseStartedAt,
		QuestionCount:        questionCount,
	}
}

func questionViewOf(q quiz.Question, withAnswer bool) questionView {
	view := questionView{
		ID:               q.ID,
		Text:             q.Text,
		Options:          q.Options,
		TimeLimitSeconds: q.TimeLimitSeconds,
	}
	if withAnswer {
		correct := q.CorrectOption
		view.CorrectOption = &correct
	}
	return view
}

func rankedViews(ranked []quiz.Ranked) []rankedView {
	out := make([]rankedView, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, rankedView{
			ParticipantID: entry.Participant.ID,
			Nickname:      entry.Participant.Nickname,
			Score:         entry.Participant.Score,
			Rank:          entry.Rank,
		})
	}
	return out
}

// buildSnapshot shapes a snapshot for observers. The correct option and the
// per-option tally stay hidden from non-hosts until results are revealed.
func buildSnapshot(snap session.Snapshot, host bool) snapshotView {
	status := snap.Quiz.Status
	view := snapshotView{
		Quiz:             quizViewOf(snap.Quiz, len(snap.Questions)),
		ParticipantCount: len(snap.Participants),
		AnswerCount:      snap.AnswerCount(),
	}
	revealed := host || status.Revealed()
	if question, ok := snap.CurrentQuestion(); ok {
		qv := questionViewOf(question, revealed)
		if endsAt, ok := snap.QuestionEndsAt(); ok {
			qv.EndsAt = &endsAt
		}
		view.Question = &qv
		if revealed {
			view.OptionCounts = snap.OptionCounts()
		}
	}
	switch status {
	case quiz.StatusLeaderboard:
		view.Leaderboard = rankedViews(quiz.Top(snap.Ranked, quiz.LeaderboardSize))
	case quiz.StatusFinished:
		view.Leaderboard = rankedViews(quiz.Top(snap.Ranked, quiz.LeaderboardSize))
		view.Podium = rankedViews(quiz.Podium(snap.Ranked))
	}
	if host {
		view.NextCommand = snap.NextCommand().String()
		view.Participants = rankedViews(snap.Ranked)
		view.Questions = make([]questionView, 0, len(snap.Questions))
		for _, question := range snap.Questions {
			view.Questions = append(view.Questions, questionViewOf(question, true))
		}
	}
	return view
}

type resultView struct {
	ParticipantID  string `json:"participant_id"`
	Nickname       string `json:"nickname"`
	Score          int    `json:"score"`
	Rank           int    `json:"rank"`
	Status         string `json:"status"`
	QuestionID     string `json:"question_id,omitempty"`
	Answered       bool   `json:"answered"`
	Outcome        string `json:"outcome,omitempty"`
	SelectedOption *int   `json:"selected_option,omitempty"`
	CorrectOption  *int   `json:"correct_option,omitempty"`
}

// buildResult withholds the outcome while the question is still live.
func buildResult(status quiz.Status, result session.ParticipantResult) resultView {
	view := resultView{
		ParticipantID: result.Participant.ID,
		Nickname:      result.Participant.Nickname,
		Score:         result.Participant.Score,
		Rank:          result.Rank,
		Status:        status.String(),
		Answered:      result.Outcome != quiz.OutcomeNoAnswer,
	}
	if result.Question == nil {
		return view
	}
	view.QuestionID = result.Question.ID
	if view.Answered {
		selected := result.SelectedOption
		view.SelectedOption = &selected
	}
	if status.Revealed() {
		view.Outcome = string(result.Outcome)
		correct := result.Question.CorrectOption
		view.CorrectOption = &correct
	}
	return view
}
