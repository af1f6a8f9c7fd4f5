// Package api exposes the flashcard service as JSON over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"interlinear/internal/domain"
	"interlinear/internal/middleware"

	"github.com/go-playground/validator/v10"
	ut "github.com/go-playground/universal-translator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlashcardService is the review service as used by the HTTP layer
type FlashcardService interface {
	CreateCard(ctx context.Context, ownerID uuid.UUID, in domain.NewFlashcard) (*domain.Flashcard, error)
	CreateClozeCard(ctx context.Context, ownerID uuid.UUID, sentence, word string, notes *string, deckID *uuid.UUID) (*domain.Flashcard, error)
	GetDueCards(ctx context.Context, ownerID uuid.UUID, asOf time.Time, deckID *uuid.UUID) ([]domain.Flashcard, error)
	GetAllCards(ctx context.Context, ownerID uuid.UUID) ([]domain.Flashcard, error)
	GetCard(ctx context.Context, ownerID, cardID uuid.UUID) (*domain.Flashcard, error)
	UpdateCard(ctx context.Context, ownerID, cardID uuid.UUID, edit domain.FlashcardEdit) (*domain.Flashcard, error)
	ReviewCard(ctx context.Context, ownerID, cardID uuid.UUID, wasCorrect bool) (*domain.ReviewResult, error)
	DeleteCard(ctx context.Context, ownerID, cardID uuid.UUID) error
	GetStats(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (*domain.Stats, error)
}

// LinkCodeIssuer issues Telegram link codes
type LinkCodeIssuer interface {
	IssueCode(ctx context.Context, ownerID uuid.UUID) (*domain.LinkCode, error)
}

// Pinger reports database reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures a Server
type Options struct {
	IdentityHeader string
	AllowedOrigins []string
	Version        string
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	cards      FlashcardService
	links      LinkCodeIssuer
	db         Pinger
	router     *http.ServeMux
	validate   *validator.Validate
	translator ut.Translator
	opts       Options
	logger     *zap.Logger
}

// NewServer creates and configures a new server.
func NewServer(cards FlashcardService, links LinkCodeIssuer, db Pinger, logger *zap.Logger, opts Options) (*Server, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}
	if opts.IdentityHeader == "" {
		opts.IdentityHeader = "X-User-ID"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		cards:      cards,
		links:      links,
		db:         db,
		router:     http.NewServeMux(),
		validate:   validate,
		translator: trans,
		opts:       opts,
		logger:     logger,
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the router wrapped in the cross-cutting middleware
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = middleware.CORS(s.opts.AllowedOrigins)(h)
	h = middleware.RequestLogger(s.logger)(h)
	h = middleware.Recover(s.logger)(h)
	return h
}

type route struct {
	pattern string
	handler http.HandlerFunc
	public  bool
}

func (s *Server) table() []route {
	return []route{
		{pattern: "GET /{$}", handler: s.handleInfo(), public: true},
		{pattern: "GET /health", handler: s.handleHealth(), public: true},

		{pattern: "GET /flashcards", handler: s.handleListFlashcards()},
		{pattern: "POST /flashcards", handler: s.handleCreateFlashcard()},
		{pattern: "POST /flashcards/cloze", handler: s.handleCreateCloze()},
		{pattern: "POST /flashcards/review", handler: s.handleReview()},
		{pattern: "GET /flashcards/stats", handler: s.handleStats()},
		{pattern: "GET /flashcards/{id}", handler: s.handleGetFlashcard()},
		{pattern: "PATCH /flashcards/{id}", handler: s.handleUpdateFlashcard()},
		{pattern: "DELETE /flashcards/{id}", handler: s.handleDeleteFlashcard()},

		{pattern: "POST /telegram/link-code", handler: s.handleIssueLinkCode()},
	}
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	identity := middleware.Identity(s.opts.IdentityHeader)
	for _, rt := range s.table() {
		if rt.public {
			s.router.Handle(rt.pattern, rt.handler)
			continue
		}
		s.router.Handle(rt.pattern, identity(middleware.Timezone(rt.handler)))
	}
}

// handleHealth pings the database.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.Error(err))
			s.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "down"})
			return
		}
		s.writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "up"})
	}
}

// handleInfo describes the service and its routes.
func (s *Server) handleInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes := s.table()
		endpoints := make([]string, 0, len(routes))
		for _, rt := range routes {
			endpoints = append(endpoints, rt.pattern)
		}
		s.writeJSON(w, http.StatusOK, infoResponse{
			Service:   "interlinear",
			Version:   s.opts.Version,
			Status:    "running",
			Endpoints: endpoints,
		})
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type infoResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}
