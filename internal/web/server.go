package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/auth"
	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/push"
	"github.com/edvart/cupkeeper/internal/roster"
	"github.com/edvart/cupkeeper/internal/store"
)

// Server is the referee HTTP API.
type Server struct {
	router      *chi.Mux
	coordinator *coordinator.Coordinator
	roster      *roster.Service
	store       store.Store
	referees    *auth.RefereeConfig
	pushService *push.Service
	sse         *SSEHub
	registry    *prometheus.Registry
	log         *logrus.Entry
	devMode     bool
}

// Config holds server configuration.
type Config struct {
	DevMode bool
}

// NewServer creates a new HTTP server. pushService and registry may be nil.
func NewServer(
	coord *coordinator.Coordinator,
	rosterService *roster.Service,
	st store.Store,
	referees *auth.RefereeConfig,
	pushService *push.Service,
	registry *prometheus.Registry,
	log *logrus.Entry,
	cfg Config,
) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "web")
	s := &Server{
		router:      chi.NewRouter(),
		coordinator: coord,
		roster:      rosterService,
		store:       st,
		referees:    referees,
		pushService: pushService,
		sse:         NewSSEHub(coord, log),
		registry:    registry,
		log:         log,
		devMode:     cfg.DevMode,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", s.handleSSE)
		r.Get("/matches", s.handleListMatches)
		r.Get("/matches/{matchID}", s.handleGetMatch)
		r.Get("/history", s.handleHistory)
		r.Get("/push/vapid-public-key", s.handleGetVAPIDPublicKey)

		r.Group(func(r chi.Router) {
			r.Use(auth.RefereeMiddleware(s.referees))

			r.Post("/matches", s.handleCreateMatch)
			r.Post("/matches/{matchID}/actions", s.handleSubmitAction)
			r.Post("/matches/{matchID}/undo", s.handleUndo)
			r.Post("/matches/{matchID}/close", s.handleClose)
			r.Post("/matches/{matchID}/stream", s.handleStream)
			r.Delete("/matches/{matchID}", s.handleRemoveMatch)

			r.Get("/cups", s.handleListCups)
			r.Get("/cups/{cup}", s.handleGetCup)
			r.Put("/cups/{cup}", s.handleSaveCup)
			r.Delete("/cups/{cup}", s.handleDeleteCup)
			r.Delete("/cups/{cup}/matches", s.handleRemoveCupMatches)
			r.Get("/cups/{cup}/groups", s.handleListGroups)
			r.Put("/cups/{cup}/groups/{group}", s.handleAddGroup)
			r.Delete("/cups/{cup}/groups/{group}", s.handleRemoveGroup)
			r.Get("/cups/{cup}/teams", s.handleListTeams)
			r.Put("/cups/{cup}/teams/{team}", s.handleSaveTeam)
			r.Delete("/cups/{cup}/teams/{team}", s.handleDeleteTeam)
			r.Get("/cups/{cup}/captains", s.handleListCaptains)
			r.Put("/cups/{cup}/captains/{userID}", s.handleSaveCaptain)
			r.Delete("/cups/{cup}/captains/{userID}", s.handleRemoveCaptain)

			r.Post("/push/subscribe", s.handleSubscribePush)
			r.Post("/push/unsubscribe", s.handleUnsubscribePush)
			r.Post("/push/test", s.handleTestPush)
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StartSSE starts the SSE hub goroutine.
func (s *Server) StartSSE(events <-chan coordinator.Event) {
	go s.sse.Run(events)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"matches": len(s.coordinator.GetMatches()),
		"devMode": s.devMode,
	})
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	s.sse.HandleConnection(w, r, r.URL.Query().Get("match"))
}
