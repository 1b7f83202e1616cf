package quiz

import (
	"fmt"
	"strings"
)

// DefaultTimeLimitSeconds is used when a question is created without a limit.
const DefaultTimeLimitSeconds = 20

// Draft is a quiz definition submitted by the host before it is stored.
type Draft struct {
	Title     string
	Questions []DraftQuestion
}

type DraftQuestion struct {
	Text             string
	Options          []string
	CorrectOption    int
	TimeLimitSeconds int
}

// Normalize trims the draft and checks it can be played. Questions receive
// their sort order from their position.
func (d Draft) Normalize() (Draft, error) {
	out := Draft{Title: strings.TrimSpace(d.Title)}
	if out.Title == "" {
		return Draft{}, fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if len(d.Questions) == 0 {
		return Draft{}, fmt.Errorf("%w: at least one question is required", ErrInvalidQuiz)
	}
	for i, q := range d.Questions {
		normalized, err := q.normalize()
		if err != nil {
			return Draft{}, fmt.Errorf("%w: question %d: %s", ErrInvalidQuiz, i+1, err.Error())
		}
		out.Questions = append(out.Questions, normalized)
	}
	return out, nil
}

func (q DraftQuestion) normalize() (DraftQuestion, error) {
	out := DraftQuestion{
		Text:             strings.TrimSpace(q.Text),
		CorrectOption:    q.CorrectOption,
		TimeLimitSeconds: q.TimeLimitSeconds,
	}
	if out.Text == "" {
		return out, fmt.Errorf("text is required")
	}
	if len(q.Options) != OptionCount {
		return out, fmt.Errorf("exactly %d options are required", OptionCount)
	}
	seen := make(map[string]struct{}, OptionCount)
	for _, option := range q.Options {
		option = strings.TrimSpace(option)
		if option == "" {
			return out, fmt.Errorf("all options must be filled")
		}
		if _, dup := seen[option]; dup {
			return out, fmt.Errorf("option %q is repeated", option)
		}
		seen[option] = struct{}{}
		out.Options = append(out.Options, option)
	}
	if out.CorrectOption < 0 || out.CorrectOption >= OptionCount {
		return out, fmt.Errorf("correct option must be between 0 and %d", OptionCount-1)
	}
	if out.TimeLimitSeconds == 0 {
		out.TimeLimitSeconds = DefaultTimeLimitSeconds
	}
	if out.TimeLimitSeconds < 0 {
		return out, fmt.Errorf("time limit must be positive")
	}
	return out, nil
}
