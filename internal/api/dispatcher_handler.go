package api

import (
	"log/slog"
	"net/http"

	"github.com/hashgrid/tasknode/internal/task"
)

// StatusResponse reports the dispatcher's current lifecycle state.
type StatusResponse struct {
	State    string `json:"state"`
	TaskName string `json:"task_name"`
	Runners  int    `json:"runners"`
}

// StopResponse acknowledges a stop request.
type StopResponse struct {
	State string `json:"state"`
}

// DispatcherHandler serves the control endpoints for one dispatcher.
type DispatcherHandler struct {
	dispatcher *task.Dispatcher
	logger     *slog.Logger
}

// NewDispatcherHandler creates a DispatcherHandler for the given dispatcher.
func NewDispatcherHandler(d *task.Dispatcher, logger *slog.Logger) *DispatcherHandler {
	return &DispatcherHandler{
		dispatcher: d,
		logger:     logger.With("component", "dispatcher_handler"),
	}
}

// Healthz reports process liveness.
func (h *DispatcherHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		h.logger.Error("failed to write health response", "error", err)
	}
}

// Status returns the dispatcher's lifecycle state and runner count.
func (h *DispatcherHandler) Status(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, r, http.StatusOK, StatusResponse{
		State:    h.dispatcher.State().String(),
		TaskName: h.dispatcher.TaskName(),
		Runners:  h.dispatcher.RunnerCount(),
	})
}

// Stop requests a graceful dispatcher shutdown. Stopping an already
// stopped dispatcher is a no-op, so this always accepts.
func (h *DispatcherHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("stop requested via control surface")
	h.dispatcher.Stop()
	RespondWithJSON(w, r, http.StatusAccepted, StopResponse{
		State: h.dispatcher.State().String(),
	})
}
