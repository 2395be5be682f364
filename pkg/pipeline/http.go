package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/privacyops/dsarflow/pkg/common/logger"
)

// HTTPHandler exposes run triggering and the last run's outcome. One run
// at a time: a trigger while a run is in flight gets 409.
type HTTPHandler struct {
	orch *Orchestrator

	mu      sync.Mutex
	running bool
	last    *Result
}

func NewHTTPHandler(orch *Orchestrator) *HTTPHandler {
	return &HTTPHandler{orch: orch}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/runs", h.handleTrigger).Methods(http.MethodPost)
	router.HandleFunc("/runs/last", h.handleLast).Methods(http.MethodGet)
}

type runSummary struct {
	RunID         string   `json:"run_id"`
	State         string   `json:"state"`
	Unprocessed   int      `json:"unprocessed"`
	Processed     int      `json:"processed"`
	Skipped       int      `json:"skipped"`
	ProvisionErrs []string `json:"provision_errors,omitempty"`
	FanOutErrs    []string `json:"fan_out_errors,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func summarize(res *Result) runSummary {
	s := runSummary{
		RunID:       res.RunID,
		State:       res.State.String(),
		Unprocessed: res.Unprocessed,
		Processed:   res.Processed,
		Skipped:     res.Skipped,
	}
	for _, err := range res.ProvisionErrs {
		s.ProvisionErrs = append(s.ProvisionErrs, err.Error())
	}
	for _, f := range res.FanOutErrs {
		s.FanOutErrs = append(s.FanOutErrs, f.Error())
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	return s
}

func (h *HTTPHandler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		http.Error(w, "run already in flight", http.StatusConflict)
		return
	}
	h.running = true
	h.mu.Unlock()

	go func() {
		res := h.orch.Run(context.Background())
		logger.Log.WithFields(map[string]interface{}{
			"run_id": res.RunID,
			"state":  res.State.String(),
		}).Info("triggered run finished")

		h.mu.Lock()
		h.last = res
		h.running = false
		h.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

func (h *HTTPHandler) handleLast(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	if last == nil {
		http.Error(w, "no run recorded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summarize(last))
}
