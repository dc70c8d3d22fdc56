package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"leadhunt-engine/internal/pipeline"
)

type RunHandler struct {
	Runner  Runner
	BaseCtx context.Context
	Status  *atomic.Value // RunStatus
	busy    *atomic.Bool
}

type runStatusResponse struct {
	RunStatus
	Pipeline pipeline.Status `json:"pipeline"`
}

func (h RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, runStatusResponse{
		RunStatus: h.Status.Load().(RunStatus),
		Pipeline:  h.Runner.Status(),
	})
}

// Run starts a workflow in the background and answers 202. A run already in
// flight, from the API or the scheduler, answers 409.
func (h RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	workflow := r.URL.Query().Get("workflow")
	if workflow == "" {
		workflow = "all"
	}
	switch workflow {
	case "leads", "jobs", "all":
	default:
		WriteError(w, r, http.StatusBadRequest, "bad_workflow", "workflow must be leads, jobs or all")
		return
	}

	if h.Runner.Running() || !h.busy.CompareAndSwap(false, true) {
		WriteError(w, r, http.StatusConflict, "busy", pipeline.ErrBusy.Error())
		return
	}
	st := h.Status.Load().(RunStatus)

	now := time.Now().UTC().Format(time.RFC3339)
	h.Status.Store(RunStatus{
		Workflow:  workflow,
		LastRunAt: now,
		LastOkAt:  st.LastOkAt,
		Running:   true,
	})

	ctx := h.BaseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		reps, err := h.Runner.Run(ctx, workflow)

		next := h.Status.Load().(RunStatus)
		next.Running = false
		next.Reports = reps
		if err != nil {
			next.LastError = err.Error()
			if !errors.Is(err, pipeline.ErrBusy) {
				slog.Error("api run failed", "workflow", workflow, "err", err)
			}
		} else {
			next.LastError = ""
			next.LastOkAt = time.Now().UTC().Format(time.RFC3339)
		}
		h.Status.Store(next)
		h.busy.Store(false)
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "workflow": workflow})
}
