package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// DriverStatusView renders the #status fragment of the shared screen.
func DriverStatusView(status DriverStatus) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="status status-` + esc(status.Status) + `">`)
		b.WriteString(`<header><h1>` + esc(status.Title) + `</h1>`)
		b.WriteString(`<p class="join-code">Join code <strong>` + esc(status.JoinCode) + `</strong></p>`)
		b.WriteString(`<p class="players">` + itoa(status.Participants) + ` players</p></header>`)

		switch status.Status {
		case "draft":
			b.WriteString(`<p class="waiting">Getting ready…</p>`)
		case "lobby":
			b.WriteString(`<p class="waiting">Waiting for the host to start</p>`)
		case "question", "results":
			writeQuestion(&b, status)
		case "leaderboard":
			writeLeaders(&b, "Leaderboard", status.Leaders)
		case "finished":
			writeLeaders(&b, "Final standings", status.Podium)
		}
		b.WriteString(`</section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeQuestion(b *strings.Builder, status DriverStatus) {
	b.WriteString(`<p class="progress">Question ` + itoa(status.QuestionNumber) + ` of ` + itoa(status.QuestionCount) + `</p>`)
	b.WriteString(`<h2 class="question">` + esc(status.QuestionText) + `</h2>`)
	if status.EndsAt != "" {
		b.WriteString(`<p class="timer" data-ends-at="` + esc(status.EndsAt) + `"></p>`)
	}
	b.WriteString(`<ol class="options">`)
	for i, option := range status.Options {
		class := "option"
		if option.Correct {
			class += " correct"
		}
		b.WriteString(`<li class="` + class + `"><span class="letter">` + optionLetter(i) + `</span> ` + esc(option.Label))
		if status.ShowCounts {
			b.WriteString(` <span class="count">` + itoa(option.Count) + `</span>`)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ol>`)
	b.WriteString(`<p class="answered">` + itoa(status.Answered) + ` / ` + itoa(status.Participants) + ` answered</p>`)
}

func writeLeaders(b *strings.Builder, title string, rows []LeaderRow) {
	b.WriteString(`<h2>` + esc(title) + `</h2><ol class="leaders">`)
	for _, row := range rows {
		b.WriteString(`<li><span class="rank">` + itoa(row.Rank) + `</span> <span class="nickname">` + esc(row.Nickname) + `</span> <span class="score">` + itoa(row.Score) + `</span></li>`)
	}
	b.WriteString(`</ol>`)
}
