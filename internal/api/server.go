package api

import (
	"PcapSpectra/internal/engine/statistic"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/metrics"
	"PcapSpectra/internal/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIHandler serves a finished summary.
type APIHandler struct {
	summary *summary.Summary
}

// NewRouter builds the routes for s, including /metrics backed by a
// dedicated Prometheus registry.
func NewRouter(s *summary.Summary) (*mux.Router, error) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics()
	if err := m.Register(reg); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	m.Record(s)

	h := &APIHandler{summary: s}
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/summary", h.summaryHandler).Methods("GET")
	r.HandleFunc("/api/v1/protocols", h.protocolsHandler).Methods("GET")
	r.HandleFunc("/api/v1/distributions/packet-size", h.packetSizeHandler).Methods("GET")
	r.HandleFunc("/api/v1/distributions/{metric:flow-bytes|flow-duration}/{transport:tcp|udp}", h.flowDistributionHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r, nil
}

// Serve runs the API on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, s *summary.Summary) error {
	router, err := NewRouter(s)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	log.Println("API server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("API server exited.")
	return nil
}

func (h *APIHandler) summaryHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.summary)
}

func (h *APIHandler) protocolsHandler(w http.ResponseWriter, r *http.Request) {
	mix, err := h.summary.Mix()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, mix)
}

func (h *APIHandler) packetSizeHandler(w http.ResponseWriter, r *http.Request) {
	writeDistribution(w, h.summary.PacketSizes)
}

func (h *APIHandler) flowDistributionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	transport := model.TransportTCP
	if vars["transport"] == "udp" {
		transport = model.TransportUDP
	}

	dists := h.summary.FlowBytes
	if vars["metric"] == "flow-duration" {
		dists = h.summary.FlowDurations
	}
	writeDistribution(w, dists.Get(transport))
}

func writeDistribution(w http.ResponseWriter, d *statistic.Distribution) {
	if d == nil {
		http.Error(w, statistic.ErrEmptyDistribution.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonBytes)
}
