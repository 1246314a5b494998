package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/MitchellNeaf/pawscheduler/internal/billing"
	"github.com/MitchellNeaf/pawscheduler/internal/booking"
	"github.com/MitchellNeaf/pawscheduler/internal/cache"
	"github.com/MitchellNeaf/pawscheduler/internal/database"
	"github.com/MitchellNeaf/pawscheduler/internal/notify"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

// Server holds the HTTP surface: a public booking page per groomer plus a
// token-authenticated groomer API.
type Server struct {
	db          *database.DB
	cache       *cache.Cache
	bookingGrid *timegrid.Grid
	editorGrid  *timegrid.Grid
	alerter     *notify.TelegramAlerter
	billing     *billing.Service
	logger      zerolog.Logger
}

// NewServer wires the HTTP layer. alerter and billingSvc may be nil.
func NewServer(db *database.DB, c *cache.Cache, bookingGrid, editorGrid *timegrid.Grid,
	alerter *notify.TelegramAlerter, billingSvc *billing.Service, logger zerolog.Logger) *Server {
	return &Server{
		db:          db,
		cache:       c,
		bookingGrid: bookingGrid,
		editorGrid:  editorGrid,
		alerter:     alerter,
		billing:     billingSvc,
		logger:      logger,
	}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/public/{slug}", func(r chi.Router) {
		r.Get("/", s.handlePublicPage)
		r.Get("/availability", s.handlePublicAvailability)
		r.Post("/book", s.handlePublicBook)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/availability", s.handleGroomerAvailability)

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", s.handleListAppointments)
			r.Post("/", s.handleCreateAppointment)
			r.Get("/export", s.handleExportDay)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAppointment)
				r.Put("/", s.handleUpdateAppointment)
				r.Delete("/", s.handleDeleteAppointment)
				r.Post("/rebook", s.handleRebookAppointment)
				r.Patch("/flags", s.handleSetFlag)
			})
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.handleListClients)
			r.Post("/", s.handleCreateClient)
			r.Get("/{id}/pets", s.handleListPets)
			r.Post("/{id}/pets", s.handleCreatePet)
		})

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/hours", s.handleListHours)
			r.Put("/hours/{weekday}", s.handleUpsertHours)
			r.Delete("/hours/{weekday}", s.handleDeleteHours)
			r.Get("/breaks", s.handleListBreaks)
			r.Post("/breaks", s.handleCreateBreak)
			r.Delete("/breaks/{id}", s.handleDeleteBreak)
			r.Get("/vacations", s.handleListVacations)
			r.Post("/vacations", s.handleCreateVacation)
			r.Delete("/vacations/{id}", s.handleDeleteVacation)
		})

		if s.billing != nil && s.billing.Enabled() {
			r.Post("/billing/checkout", s.handleBillingCheckout)
			r.Post("/billing/portal", s.handleBillingPortal)
		}
	})

	if s.billing != nil {
		r.Post("/webhooks/stripe", s.billing.HandleWebhook)
	}

	return r
}

// bookingService builds the write path scoped to one groomer. The editor
// grid governs groomer-entered bookings; the public surface uses the
// tighter booking grid.
func (s *Server) bookingService(groomerID int64, grid *timegrid.Grid) *booking.Service {
	return booking.NewService(s.db.ForGroomer(groomerID), grid, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON rejects unknown fields so typos in payloads fail loudly.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
