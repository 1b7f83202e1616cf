package server

import (
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"wavespace/internal/quiz"
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
			return printable(fl.Field().String())
		})
		_ = engine.RegisterValidation("joincode", func(fl validator.FieldLevel) bool {
			return quiz.ValidJoinCode(quiz.NormalizeJoinCode(fl.Field().String()))
		})
	})
}

// printable rejects control and format characters. Length and emptiness are
// checked by the admission rules so they get their own error codes.
func printable(text string) bool {
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
