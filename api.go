package main

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"git.fiblab.net/sim/fare/fare"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

const (
	REQUEST_ID_HEADER = "X-Request-Id"
	// 单次请求处理超时
	REQUEST_TIMEOUT = 5 * time.Second
)

// 响应中无穷大的数值（不封顶、不可通行）以null表示
type FareResponse struct {
	FareDistance           fare.FareDistance `json:"fareDistance"`
	BaseFare               float64           `json:"baseFare"`
	BaseFareCap            *float64          `json:"baseFareCap"`
	BaseFareDiscountFactor float64           `json:"baseFareDiscountFactor"`
	AccessFee              *float64          `json:"accessFee"`
	Fare                   *float64          `json:"fare"`
	Options                fare.Options      `json:"options"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type StationsResponse struct {
	Stations []string `json:"stations"`
}

type InterchangesResponse struct {
	Route        string             `json:"route"`
	Interchanges map[string]float64 `json:"interchanges"`
}

func finite(x float64) *float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return nil
	}
	return &x
}

func NewFareResponse(b fare.FareBreakdown) FareResponse {
	return FareResponse{
		FareDistance:           b.FareDistance,
		BaseFare:               b.BaseFare,
		BaseFareCap:            finite(b.BaseFareCap),
		BaseFareDiscountFactor: b.BaseFareDiscountFactor,
		AccessFee:              finite(b.AccessFee),
		Fare:                   finite(b.Fare),
		Options:                b.Options,
	}
}

func NewRouter(s *FareServer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{REQUEST_ID_HEADER},
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/fare", s.handleFare)
		r.Get("/distance", s.handleDistance)
		r.Get("/stations", s.handleStations)
		r.Get("/routes/{route}/interchanges", s.handleInterchanges)
		r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, s.Stats())
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/suspend", func(w http.ResponseWriter, r *http.Request) {
			s.Suspend()
			log.Info("fare service suspended")
			w.WriteHeader(http.StatusNoContent)
		})
		r.Post("/resume", func(w http.ResponseWriter, r *http.Request) {
			s.Resume()
			log.Info("fare service resumed")
			w.WriteHeader(http.StatusNoContent)
		})
		r.Post("/reload", func(w http.ResponseWriter, r *http.Request) {
			if err := s.Reload(r.Context()); err != nil {
				log.Errorf("reload failed: %v", err)
				writeError(w, http.StatusInternalServerError, "reload_failed", err)
				return
			}
			writeJSON(w, http.StatusOK, s.Stats())
		})
	})
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(REQUEST_ID_HEADER)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(REQUEST_ID_HEADER, id)
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.WithField("request_id", w.Header().Get(REQUEST_ID_HEADER)).Debugf(
			"%s %s %d %v", r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start),
		)
	})
}

func parseOptions(r *http.Request) (fare.Options, error) {
	q := r.URL.Query()
	opts := fare.Options{FareType: fare.FareType(q.Get("fareType"))}
	if v := q.Get("offPeak"); v != "" {
		offPeak, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("offPeak must be a boolean")
		}
		opts.OffPeak = offPeak
	}
	return opts, nil
}

func parseStations(r *http.Request) (string, string, error) {
	q := r.URL.Query()
	origin, destination := q.Get("origin"), q.Get("destination")
	if origin == "" || destination == "" {
		return "", "", errors.New("origin and destination are required")
	}
	return origin, destination, nil
}

func (s *FareServer) handleFare(w http.ResponseWriter, r *http.Request) {
	origin, destination, err := parseStations(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	opts, err := parseOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), REQUEST_TIMEOUT)
	defer cancel()
	b, err := s.Fare(ctx, origin, destination, opts)
	if err != nil {
		writeFareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewFareResponse(b))
}

func (s *FareServer) handleDistance(w http.ResponseWriter, r *http.Request) {
	origin, destination, err := parseStations(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), REQUEST_TIMEOUT)
	defer cancel()
	d, err := s.Distance(ctx, origin, destination)
	if err != nil {
		writeFareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *FareServer) handleStations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StationsResponse{Stations: s.Stations()})
}

func (s *FareServer) handleInterchanges(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")
	ic, err := s.Interchanges(route)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_route", err)
		return
	}
	writeJSON(w, http.StatusOK, InterchangesResponse{Route: route, Interchanges: ic})
}

func writeFareError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fare.ErrUnknownStation):
		writeError(w, http.StatusBadRequest, "unknown_station", err)
	case errors.Is(err, fare.ErrNoPathFound):
		writeError(w, http.StatusNotFound, "no_path_found", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", err)
	default:
		log.Errorf("unexpected error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	resp := ErrorResponse{Error: code}
	if err != nil {
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("failed to encode response: %v", err)
	}
}
