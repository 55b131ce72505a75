package server

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/crazyeights/eights-server-go/internal/config"
	"github.com/crazyeights/eights-server-go/internal/game"
	"github.com/crazyeights/eights-server-go/internal/repository"
	"github.com/crazyeights/eights-server-go/internal/session"
	"github.com/crazyeights/eights-server-go/internal/tournament"
)

// Server is the HTTP/WebSocket front end. It translates wire requests
// into engine operations and holds no card-legality logic of its own.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	matches    game.Registry
	sessions   *session.Manager
	results    repository.ResultStore // nil when persistence is disabled
	hub        *Hub

	mu          sync.RWMutex
	tournaments map[string]*tournament.Controller // match id -> controller
}

// New wires a server over the given collaborators. results may be nil.
func New(
	cfg *config.Config,
	matches game.Registry,
	bus *game.EventBus,
	sessions *session.Manager,
	results repository.ResultStore,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:         cfg,
		logger:      logger,
		matches:     matches,
		sessions:    sessions,
		results:     results,
		tournaments: make(map[string]*tournament.Controller),
	}
	s.hub = NewHub(s, logger)
	if bus != nil {
		bus.Subscribe(s.hub.handleEvent)
	}
	return s
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/sessions", s.handleCreateSession)

	r.Route("/api/matches", func(r chi.Router) {
		r.Post("/", s.handleCreateMatch)
		r.Get("/", s.handleListMatches)
		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/state", s.handleGetState)
			r.Get("/hand", s.handleGetHand)
			r.Post("/join", s.handleJoinMatch)
			r.Post("/start", s.handleStartMatch)
			r.Post("/play", s.handlePlayCards)
			r.Post("/draw", s.handleDrawCards)
			r.Post("/pass", s.handlePassTurn)
			r.Post("/advance-round", s.handleAdvanceRound)
		})
	})

	r.Get("/api/players/{playerID}/stats", s.handlePlayerStats)
	r.Get("/api/leaderboard", s.handleLeaderboard)
	r.Get("/ws", s.hub.handleUpgrade)

	return r
}

// Run starts the hub's broadcast loop. It returns when the hub stops.
func (s *Server) Run() {
	s.hub.run()
}

// Shutdown stops the hub and disconnects all clients.
func (s *Server) Shutdown() {
	s.hub.stop()
}

func (s *Server) controllerFor(matchID string) (*tournament.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.tournaments[matchID]
	return c, ok
}
