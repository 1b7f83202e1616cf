package session

import (
	"crypto/rand"
	"math/big"

	"wavespace/internal/quiz"
)

func newJoinCode() (string, error) {
	alphabet := quiz.JoinCodeAlphabet
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, quiz.JoinCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
