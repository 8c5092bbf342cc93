package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/importer"
	"github.com/conorfennell/knoldeck/internal/review"
	"github.com/conorfennell/knoldeck/internal/sm2"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/validate"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server.
type Server struct {
	db        *storage.DB
	reviews   *review.Service
	importer  *importer.Importer
	reposDir  string
	logger    *slog.Logger
	router    *http.ServeMux
	templates *template.Template
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, reviews *review.Service, imp *importer.Importer, reposDir string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tpl, err := template.New("").Funcs(template.FuncMap{
		"markdown": renderMarkdown,
		"reltime": func(t time.Time) string {
			if !t.After(reviews.Now()) {
				return "now"
			}
			return humanize.RelTime(t, reviews.Now(), "ago", "from now")
		},
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:        db,
		reviews:   reviews,
		importer:  imp,
		reposDir:  reposDir,
		logger:    logger,
		router:    http.NewServeMux(),
		templates: tpl,
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex())
	s.router.HandleFunc("POST /decks", s.handleCreateDeck())
	s.router.HandleFunc("GET /decks/{id}", s.handleGetDeck())
	s.router.HandleFunc("POST /decks/{id}/cards", s.handleAddCard())
	s.router.HandleFunc("POST /decks/{id}/import", s.handleImport())

	// HTMX-based review flow
	s.router.HandleFunc("GET /decks/{id}/review/next", s.handleGetNextReview())
	s.router.HandleFunc("GET /cards/{id}/answer", s.handleShowAnswer())
	s.router.HandleFunc("POST /cards/{id}/review", s.handlePostReview())
	s.router.HandleFunc("GET /cards/{id}/history", s.handleHistory())
}

type deckRow struct {
	Deck     domain.Deck
	DueCount int
}

// handleIndex renders the deck list.
func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.deckRows(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, "index", map[string]any{"Decks": rows})
	}
}

// handleCreateDeck adds a deck and re-renders the deck list.
func (s *Server) handleCreateDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := s.db.CreateDeck(r.Context(), storage.DeckInput{
			Name:        r.PostFormValue("name"),
			Description: r.PostFormValue("description"),
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		rows, err := s.deckRows(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.render(w, r, http.StatusCreated, "deck_list", map[string]any{"Decks": rows})
	}
}

// handleGetDeck renders the deck view, showing the number of due cards.
func (s *Server) handleGetDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deck, err := s.db.GetDeck(r.Context(), r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		stats, err := s.db.GetDeckStats(r.Context(), deck.ID, s.reviews.Now())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		cards, err := s.db.GetCardsByDeck(r.Context(), deck.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, "deck", map[string]any{
			"Deck":  deck,
			"Stats": stats,
			"Cards": cards,
		})
	}
}

// handleAddCard creates a card in the deck.
func (s *Server) handleAddCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := s.db.CreateCard(r.Context(), r.PathValue("id"), storage.CardInput{
			Front:   r.PostFormValue("front"),
			Back:    r.PostFormValue("back"),
			Context: r.PostFormValue("context"),
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.render(w, r, http.StatusCreated, "flash", "Added card: "+card.Front)
	}
}

// handleImport syncs a directory or git repository into the deck. source may
// name any directory readable by the server process; the UI is meant for a
// single local user. Git checkouts always stay under reposDir.
func (s *Server) handleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := r.PostFormValue("source")
		if source == "" {
			http.Error(w, "Source cannot be empty", http.StatusBadRequest)
			return
		}
		report, err := s.importer.Import(r.Context(), r.PathValue("id"), source, importer.Options{
			ReposDir: s.reposDir,
			Prune:    r.PostFormValue("prune") == "on",
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, "import_report", report)
	}
}

// handleGetNextReview renders the front of the deck's next due card.
func (s *Server) handleGetNextReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deck, err := s.db.GetDeck(r.Context(), r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.renderNext(w, r, deck.ID)
	}
}

// handleShowAnswer renders the back of a card with the rating buttons.
func (s *Server) handleShowAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := s.db.GetCard(r.Context(), r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, "card_back", map[string]any{
			"Card":  card,
			"Again": sm2.Again,
			"Okay":  sm2.Okay,
			"Easy":  sm2.Easy,
		})
	}
}

// handlePostReview records a rating and renders the next due card.
func (s *Server) handlePostReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grade, err := strconv.Atoi(r.PostFormValue("grade"))
		if err != nil {
			http.Error(w, "Invalid grade", http.StatusBadRequest)
			return
		}

		res, err := s.reviews.ReviewCard(r.Context(), r.PathValue("id"), grade)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		// After review, show the next card
		s.renderNext(w, r, res.Card.DeckID)
	}
}

// handleHistory renders the review log of a card.
func (s *Server) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := s.db.GetCard(r.Context(), r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		logs, err := s.db.ReviewLogsForCard(r.Context(), card.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, "history", map[string]any{"Card": card, "Logs": logs})
	}
}

func (s *Server) renderNext(w http.ResponseWriter, r *http.Request, deckID string) {
	due, err := s.reviews.GetCardsDueForReview(r.Context(), deckID, s.reviews.Now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(due) == 0 {
		s.render(w, r, http.StatusOK, "review_done", map[string]any{"DeckID": deckID})
		return
	}
	s.render(w, r, http.StatusOK, "card_front", map[string]any{
		"Card":      due[0],
		"Remaining": len(due),
	})
}

func (s *Server) deckRows(r *http.Request) ([]deckRow, error) {
	decks, err := s.db.ListDecks(r.Context())
	if err != nil {
		return nil, err
	}
	now := s.reviews.Now()
	rows := make([]deckRow, 0, len(decks))
	for _, d := range decks {
		n, err := s.reviews.DueCount(r.Context(), d.ID, now)
		if err != nil {
			return nil, err
		}
		rows = append(rows, deckRow{Deck: d, DueCount: n})
	}
	return rows, nil
}

// render buffers the template output before writing the status line.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, review.ErrInvalidQuality), errors.Is(err, validate.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
