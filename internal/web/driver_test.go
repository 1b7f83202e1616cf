package web

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, status DriverStatus) string {
	t.Helper()
	var buf bytes.Buffer
	if err := DriverStatusView(status).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestDriverStatusQuestion(t *testing.T) {
	html := render(t, DriverStatus{
		Title:          "Capitals",
		JoinCode:       "AB3XYZ",
		Status:         "results",
		QuestionNumber: 2,
		QuestionCount:  5,
		QuestionText:   "Capital of <France>?",
		Options: []OptionTally{
			{Label: "Paris", Count: 3, Correct: true},
			{Label: "Rome", Count: 1},
		},
		ShowCounts:   true,
		Participants: 4,
		Answered:     4,
	})
	for _, want := range []string{"Question 2 of 5", "Capital of &lt;France&gt;?", `class="option correct"`, `<span class="count">3</span>`, "4 / 4 answered"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in %s", want, html)
		}
	}
}

func TestDriverStatusHidesCountsDuringQuestion(t *testing.T) {
	html := render(t, DriverStatus{
		Status:  "question",
		Options: []OptionTally{{Label: "Paris", Count: 3}},
	})
	if strings.Contains(html, `class="count"`) || strings.Contains(html, "correct") {
		t.Fatalf("expected no counts or answer while the question is live: %s", html)
	}
}

func TestDriverStatusPodium(t *testing.T) {
	html := render(t, DriverStatus{
		Status: "finished",
		Podium: []LeaderRow{{Rank: 1, Nickname: "Ada", Score: 20}, {Rank: 1, Nickname: "Bob", Score: 20}},
	})
	if !strings.Contains(html, "Final standings") || strings.Count(html, `<span class="rank">1</span>`) != 2 {
		t.Fatalf("unexpected podium: %s", html)
	}
}
