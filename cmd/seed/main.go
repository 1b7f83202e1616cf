package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"wavespace/internal/config"
	"wavespace/internal/db"
	"wavespace/internal/logger"
	"wavespace/internal/quiz"
	"wavespace/internal/session"
	"wavespace/internal/store"
)

type quizFile struct {
	Title     string         `yaml:"title"`
	Questions []questionFile `yaml:"questions"`
}

type questionFile struct {
	Text             string   `yaml:"text"`
	Options          []string `yaml:"options"`
	CorrectOption    int      `yaml:"correct_option"`
	TimeLimitSeconds int      `yaml:"time_limit_seconds"`
}

func main() {
	filePath := flag.String("file", "quiz.yaml", "path to quiz yaml")
	openLobby := flag.Bool("open", false, "open the lobby after creating the quiz")
	flag.Parse()

	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()
	if dotenvErr != nil {
		log.Warn("failed to load .env", zap.Error(dotenvErr))
	}

	draft, err := readQuiz(*filePath)
	if err != nil {
		log.Fatal("failed to read quiz", zap.String("file", *filePath), zap.Error(err))
	}

	conn, err := db.Open(cfg, log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	svc := session.NewService(store.NewGorm(conn, cfg.LockTimeout()), nil, nil, log, session.Options{
		Capacity:                cfg.MaxParticipants,
		AdmissionTimeout:        cfg.AdmissionTimeout(),
		ReadRetries:             cfg.ReadRetries,
		DefaultTimeLimitSeconds: cfg.DefaultTimeLimitSeconds,
	})

	ctx := context.Background()
	created, questions, err := svc.CreateQuiz(ctx, draft)
	if err != nil {
		log.Fatal("failed to create quiz", zap.Error(err))
	}
	if *openLobby {
		if _, err := svc.Apply(ctx, created.ID, quiz.Command{Kind: quiz.CommandOpenLobby}); err != nil {
			log.Fatal("failed to open lobby", zap.Error(err))
		}
	}
	log.Info("loaded quiz",
		zap.String("quiz_id", created.ID),
		zap.String("join_code", created.JoinCode),
		zap.Int("questions", len(questions)),
	)
}

func readQuiz(path string) (quiz.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return quiz.Draft{}, err
	}
	return parseQuiz(data)
}

func parseQuiz(data []byte) (quiz.Draft, error) {
	var file quizFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return quiz.Draft{}, fmt.Errorf("parse quiz: %w", err)
	}
	draft := quiz.Draft{Title: file.Title}
	for _, q := range file.Questions {
		draft.Questions = append(draft.Questions, quiz.DraftQuestion{
			Text:             q.Text,
			Options:          q.Options,
			CorrectOption:    q.CorrectOption,
			TimeLimitSeconds: q.TimeLimitSeconds,
		})
	}
	return draft.Normalize()
}
