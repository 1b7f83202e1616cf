package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wavespace/internal/config"
	"wavespace/internal/metrics"
	"wavespace/internal/session"
)

const (
	answerRatePerSecond = 10
	answerBurst         = 20
	limiterExpiry       = 10 * time.Minute
)

type Server struct {
	svc     *session.Service
	cfg     config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
	hub     *wsHub
	tokens  *tokenIssuer
	joins   *rateLimiter
	answers *rateLimiter
	relay   *relay

	broadcastMu sync.Mutex
	running     map[string]bool
	pending     map[string]bool

	revealMu sync.Mutex
	timersMu sync.Mutex
	timers   map[string]*time.Timer

	stop     chan struct{}
	stopOnce sync.Once
}

func New(store session.Store, cfg config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	registerValidators()
	s := &Server{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		hub:     newWSHub(),
		tokens:  newTokenIssuer(cfg.TokenSecret, cfg.TokenTTL(), log),
		joins:   newRateLimiter(rate.Every(time.Minute/time.Duration(max(cfg.JoinRatePerMinute, 1))), max(cfg.JoinRatePerMinute, 1)),
		answers: newRateLimiter(rate.Limit(answerRatePerSecond), answerBurst),
		running: make(map[string]bool),
		pending: make(map[string]bool),
		timers:  make(map[string]*time.Timer),
		stop:    make(chan struct{}),
	}
	s.svc = session.NewService(store, s, s.metrics, log.Named("session"), session.Options{
		Capacity:                cfg.MaxParticipants,
		AdmissionTimeout:        cfg.AdmissionTimeout(),
		ReadRetries:             cfg.ReadRetries,
		DefaultTimeLimitSeconds: cfg.DefaultTimeLimitSeconds,
	})
	return s
}

func (s *Server) Service() *session.Service {
	return s.svc
}

func (s *Server) Handler() http.Handler {
	if s.cfg.GinMode != "" {
		gin.SetMode(s.cfg.GinMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.metrics.Middleware())

	r.GET("/", s.handleHome)
	r.GET("/display/:id", s.handleDisplay)
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/ws/quizzes/:id", s.handleWebsocket)

	api := r.Group("/api")
	api.POST("/join", s.limitByIP(s.joins), s.handleJoin)
	api.POST("/answers", s.requireParticipant(), s.handleAnswer)
	api.GET("/quizzes/:id", s.handlePublicSnapshot)
	api.GET("/quizzes/:id/leaderboard", s.handleLeaderboard)
	api.GET("/quizzes/:id/results/:participant_id", s.handleResult)

	admin := api.Group("/admin", s.requireAdmin())
	admin.POST("/quizzes", s.handleCreateQuiz)
	admin.GET("/quizzes", s.handleListQuizzes)
	admin.GET("/quizzes/:id", s.handleHostSnapshot)
	admin.DELETE("/quizzes/:id", s.handleDeleteQuiz)
	admin.POST("/quizzes/:id/commands/:command", s.handleCommand)
	return r
}

// Start runs the resync loop and, when Redis is configured, the relay
// subscription. It returns once both are running.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.RedisURL != "" {
		rl, err := newRelay(ctx, s.cfg.RedisURL, s.cfg.RedisChannel, s.log.Named("relay"))
		if err != nil {
			return err
		}
		s.relay = rl
		go rl.run(s.stop, s.broadcastLocal)
	}
	go s.resyncLoop()
	return nil
}

func (s *Server) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.timersMu.Lock()
		for id, timer := range s.timers {
			timer.Stop()
			delete(s.timers, id)
		}
		s.timersMu.Unlock()
		if s.relay != nil {
			s.relay.close()
		}
		s.hub.CloseAll()
	})
}

// resyncLoop re-broadcasts every quiz with connected observers so a missed
// notification is corrected within one interval.
func (s *Server) resyncLoop() {
	interval := s.cfg.ResyncInterval()
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			for _, quizID := range s.hub.QuizIDs() {
				s.queueBroadcast(quizID)
			}
		case <-sweep.C:
			s.joins.sweep(limiterExpiry)
			s.answers.sweep(limiterExpiry)
		}
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", c.ClientIP()),
		)
	}
}
