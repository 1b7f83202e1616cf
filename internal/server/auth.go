package server

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const participantClaimsKey = "participant_claims"

func (s *Server) adminAuthorized(c *gin.Context) bool {
	if s.cfg.AdminSecret == "" {
		return false
	}
	provided := strings.TrimSpace(c.GetHeader("X-Admin-Secret"))
	if provided == "" {
		provided = strings.TrimSpace(c.Query("secret"))
	}
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.AdminSecret)) == 1
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.adminAuthorized(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

type participantClaims struct {
	QuizID        string `json:"quiz_id"`
	ParticipantID string `json:"participant_id"`
	jwt.RegisteredClaims
}

// tokenIssuer signs the bearer tokens handed out on join.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func newTokenIssuer(secret string, ttl time.Duration, log *zap.Logger) *tokenIssuer {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(err)
		}
		log.Warn("TOKEN_SECRET not set; participant tokens will not survive a restart")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &tokenIssuer{secret: key, ttl: ttl}
}

func (t *tokenIssuer) Issue(quizID, participantID string) (string, error) {
	now := time.Now()
	claims := participantClaims{
		QuizID:        quizID,
		ParticipantID: participantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   participantID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *tokenIssuer) Parse(raw string) (*participantClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &participantClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*participantClaims)
	if !ok || !parsed.Valid || claims.ParticipantID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// requireParticipant checks the bearer token and rate limits per participant.
func (s *Server) requireParticipant() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := s.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !s.answers.Allow(claims.ParticipantID) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too_many_requests"})
			return
		}
		c.Set(participantClaimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *participantClaims {
	value, ok := c.Get(participantClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*participantClaims)
	return claims
}
