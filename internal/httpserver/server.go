// Package httpserver exposes the monitoring engine over HTTP.
package httpserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/digiclimate/supplyrisk/internal/archive"
	"github.com/digiclimate/supplyrisk/internal/config"
	"github.com/digiclimate/supplyrisk/internal/monitor"
)

// Pinger reports backing-store health; nil means no store to check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	cfg      config.Config
	engine   *monitor.Engine
	pinger   Pinger
	archiver archive.Archiver
}

// New builds a Server. pinger and archiver may be nil.
func New(cfg config.Config, engine *monitor.Engine, pinger Pinger, archiver archive.Archiver) *Server {
	return &Server{cfg: cfg, engine: engine, pinger: pinger, archiver: archiver}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/supplyrisk", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/risk", s.handleOverallRisk)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/recommendations", s.handleRecommendations)

		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuth)
			r.Post("/monitor/run", s.handleRun)
			r.Post("/cache/clear", s.handleCacheClear)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]interface{}{
		"ok":   true,
		"time": time.Now().UTC(),
	}
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			status["ok"] = false
			status["db"] = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.engine.Statuses(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleOverallRisk(w http.ResponseWriter, r *http.Request) {
	overall, err := s.engine.Overall(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, overall)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	feed, err := s.engine.AlertFeed(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": feed,
		"count":  len(feed),
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	materialID := 0
	if raw := r.URL.Query().Get("materialId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid materialId")
			return
		}
		materialID = id
	}
	recs, err := s.engine.Recommendations(r.Context(), materialID)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.Run(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	if s.archiver != nil {
		if key, err := s.archiver.ArchiveRun(r.Context(), report); err != nil {
			log.Printf("[httpserver] archive run %s: %v", report.RunID, err)
		} else {
			log.Printf("[httpserver] archived run %s to %s", report.RunID, key)
		}
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.engine.Cache().Clear()
	respondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
