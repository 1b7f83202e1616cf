package main

import (
	"errors"
	"testing"

	"wavespace/internal/quiz"
)

func TestParseQuiz(t *testing.T) {
	draft, err := parseQuiz([]byte(`
title: "  Capitals "
questions:
  - text: Capital of France?
    options: [Rome, Paris, Oslo, Bern]
    correct_option: 1
  - text: Capital of Norway?
    options: [Rome, Paris, Oslo, Bern]
    correct_option: 2
    time_limit_seconds: 30
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if draft.Title != "Capitals" || len(draft.Questions) != 2 {
		t.Fatalf("unexpected draft %+v", draft)
	}
	if draft.Questions[0].TimeLimitSeconds != quiz.DefaultTimeLimitSeconds || draft.Questions[1].TimeLimitSeconds != 30 {
		t.Fatalf("unexpected time limits %+v", draft.Questions)
	}
}

func TestParseQuizRejectsInvalid(t *testing.T) {
	_, err := parseQuiz([]byte(`
title: Broken
questions:
  - text: Too few
    options: [a, b]
`))
	if !errors.Is(err, quiz.ErrInvalidQuiz) {
		t.Fatalf("expected ErrInvalidQuiz, got %v", err)
	}
	if _, err := parseQuiz([]byte("title: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
}
