package tripplanner

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRequestBodySize limits POST body sizes.
const maxRequestBodySize = 1 << 20 // 1 MB

// NewRouter returns the planner's HTTP surface:
//
//	POST /api/trip-planner
//	GET  /api/trip-planner/schema
//	GET  /healthz
//	GET  /metrics
//
// A nil gatherer serves the default Prometheus registry.
func NewRouter(p *Planner, gatherer prometheus.Gatherer) *mux.Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := mux.NewRouter()
	p.RegisterHTTPHandlers(r)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

// RegisterHTTPHandlers mounts the plan and schema endpoints on router.
func (p *Planner) RegisterHTTPHandlers(router *mux.Router) {
	router.HandleFunc("/api/trip-planner", p.handlePlan).Methods(http.MethodPost)
	router.HandleFunc("/api/trip-planner/schema", handleSchema).Methods(http.MethodGet)
}

func (p *Planner) handlePlan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req itinerary.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err = fmt.Errorf("%w: request body: %v", itinerary.ErrInvalidRequest, err)
		writeJSON(w, http.StatusBadRequest, itinerary.Failed(err))
		return
	}

	plan, err := p.Plan(r.Context(), req)
	if err != nil {
		writeJSON(w, StatusFor(err), itinerary.Failed(err))
		return
	}
	writeJSON(w, http.StatusOK, itinerary.Succeeded(plan))
}

// StatusFor maps a pipeline error to an HTTP status code.
func StatusFor(err error) int {
	switch outcomeOf(err) {
	case OutcomeSuccess:
		return http.StatusOK
	case OutcomeInvalidRequest:
		return http.StatusBadRequest
	case OutcomeUnparseable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ToolSchema())
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing useful to do with an encode error.
	_ = json.NewEncoder(w).Encode(v)
}
