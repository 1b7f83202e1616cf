package server

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wavespace/internal/quiz"
	"wavespace/internal/session"
)

func sampleSnapshot(status quiz.Status) session.Snapshot {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := quiz.Quiz{ID: "q", Title: "Capitals", JoinCode: "AB3XYZ", Status: status, Index: 0, PhaseStartedAt: started}
	questions := []quiz.Question{{
		ID:               "q1",
		Text:             "Capital of France?",
		Options:          []string{"Rome", "Paris", "Oslo", "Bern"},
		CorrectOption:    1,
		TimeLimitSeconds: 20,
	}}
	participants := []quiz.Participant{
		{ID: "p1", Nickname: "Ada", Score: 10, CreatedAt: started},
		{ID: "p2", Nickname: "Bob", Score: 0, CreatedAt: started.Add(time.Second)},
	}
	answers := []quiz.Answer{
		{QuestionID: "q1", ParticipantID: "p1", SelectedOption: 1, IsCorrect: true},
		{QuestionID: "q1", ParticipantID: "p2", SelectedOption: 3},
	}
	return session.Snapshot{
		Quiz:         q,
		Questions:    questions,
		Participants: participants,
		Answers:      answers,
		Ranked:       quiz.Rank(participants),
	}
}

func TestBuildSnapshotHidesAnswerUntilRevealed(t *testing.T) {
	live := buildSnapshot(sampleSnapshot(quiz.StatusQuestion), false)
	if live.Question == nil || live.Question.CorrectOption != nil || live.OptionCounts != nil {
		t.Fatalf("expected hidden answer during question, got %+v", live.Question)
	}
	if live.AnswerCount != 2 || live.ParticipantCount != 2 {
		t.Fatalf("unexpected counts %+v", live)
	}
	if live.Question.EndsAt == nil || !live.Question.EndsAt.Equal(live.Quiz.PhaseStartedAt.Add(20*time.Second)) {
		t.Fatalf("unexpected ends_at %v", live.Question.EndsAt)
	}

	host := buildSnapshot(sampleSnapshot(quiz.StatusQuestion), true)
	if host.Question.CorrectOption == nil || *host.Question.CorrectOption != 1 || host.NextCommand != "reveal_results" {
		t.Fatalf("expected host view with answer and next command, got %+v", host)
	}

	shown := buildSnapshot(sampleSnapshot(quiz.StatusResults), false)
	if shown.Question.CorrectOption == nil || shown.OptionCounts[1] != 1 || shown.OptionCounts[3] != 1 {
		t.Fatalf("expected revealed answer and counts, got %+v", shown)
	}
	if shown.Question.EndsAt != nil {
		t.Fatalf("expected no deadline once results are shown")
	}
	if shown.NextCommand != "" || shown.Participants != nil {
		t.Fatalf("public snapshot leaked host fields")
	}
}

func TestBuildSnapshotStandings(t *testing.T) {
	board := buildSnapshot(sampleSnapshot(quiz.StatusLeaderboard), false)
	if len(board.Leaderboard) != 2 || board.Podium != nil {
		t.Fatalf("unexpected leaderboard view %+v", board)
	}
	final := buildSnapshot(sampleSnapshot(quiz.StatusFinished), false)
	if len(final.Podium) != 2 || final.Podium[0].Nickname != "Ada" || final.Podium[0].Rank != 1 {
		t.Fatalf("unexpected podium %+v", final.Podium)
	}
}

func TestBuildResult(t *testing.T) {
	snap := sampleSnapshot(quiz.StatusQuestion)
	result, _ := snap.ResultFor("p2")
	hidden := buildResult(quiz.StatusQuestion, result)
	if !hidden.Answered || hidden.Outcome != "" || hidden.CorrectOption != nil {
		t.Fatalf("expected hidden outcome, got %+v", hidden)
	}
	shown := buildResult(quiz.StatusResults, result)
	if shown.Outcome != "incorrect" || *shown.SelectedOption != 3 || *shown.CorrectOption != 1 {
		t.Fatalf("unexpected revealed result %+v", shown)
	}
}

func TestDriverStatusFragment(t *testing.T) {
	html, err := renderDriverStatusHTML(sampleSnapshot(quiz.StatusResults))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"AB3XYZ", "Capital of France?", `class="option correct"`, "2 / 2 answered"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in %s", want, html)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := newTokenIssuer("secret", time.Hour, zap.NewNop())
	token, err := issuer.Issue("quiz-1", "participant-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.QuizID != "quiz-1" || claims.ParticipantID != "participant-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	other := newTokenIssuer("other", time.Hour, zap.NewNop())
	if _, err := other.Parse(token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
	expired := newTokenIssuer("secret", time.Nanosecond, zap.NewNop())
	stale, _ := expired.Issue("quiz-1", "participant-1")
	time.Sleep(1100 * time.Millisecond)
	if _, err := issuer.Parse(stale); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestRateLimiterPerKey(t *testing.T) {
	limiter := newRateLimiter(rate.Every(time.Hour), 2)
	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatalf("expected burst of two")
	}
	if limiter.Allow("a") {
		t.Fatalf("expected third request limited")
	}
	if !limiter.Allow("b") {
		t.Fatalf("expected other key unaffected")
	}
	limiter.sweep(0)
	if !limiter.Allow("a") {
		t.Fatalf("expected sweep to reset idle visitors")
	}
}
