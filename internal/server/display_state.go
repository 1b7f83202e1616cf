package server

import (
	"bytes"
	"context"

	"wavespace/internal/quiz"
	"wavespace/internal/session"
	"wavespace/internal/web"
)

func buildDriverStatus(snap session.Snapshot) web.DriverStatus {
	status := web.DriverStatus{
		Title:         snap.Quiz.Title,
		JoinCode:      snap.Quiz.JoinCode,
		Status:        snap.Quiz.Status.String(),
		QuestionCount: len(snap.Questions),
		Participants:  len(snap.Participants),
		Answered:      snap.AnswerCount(),
	}
	if question, ok := snap.CurrentQuestion(); ok {
		revealed := snap.Quiz.Status.Revealed()
		counts := snap.OptionCounts()
		status.QuestionNumber = snap.Quiz.Index + 1
		status.QuestionText = question.Text
		status.ShowCounts = revealed
		for i, label := range question.Options {
			tally := web.OptionTally{Label: label}
			if revealed {
				tally.Correct = i == question.CorrectOption
				if i < len(counts) {
					tally.Count = counts[i]
				}
			}
			status.Options = append(status.Options, tally)
		}
	}
	if endsAt, ok := snap.QuestionEndsAt(); ok {
		status.EndsAt = web.FormatTime(endsAt)
	}
	status.Leaders = leaderRows(quiz.Top(snap.Ranked, quiz.LeaderboardSize))
	status.Podium = leaderRows(quiz.Podium(snap.Ranked))
	return status
}

func leaderRows(ranked []quiz.Ranked) []web.LeaderRow {
	rows := make([]web.LeaderRow, 0, len(ranked))
	for _, entry := range ranked {
		rows = append(rows, web.LeaderRow{
			Rank:     entry.Rank,
			Nickname: entry.Participant.Nickname,
			Score:    entry.Participant.Score,
		})
	}
	return rows
}

func renderDriverStatusHTML(snap session.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := web.DriverStatusView(buildDriverStatus(snap)).Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
