package handlers

import (
	"net/http"

	"github.com/longregen/promptune/internal/domain"
	"github.com/longregen/promptune/internal/ports"
)

// RunsHandler exposes read access to persisted OptimizationRuns and their
// TrialRecord history, generalizing the CLI's "optimize list/show/best"
// subcommands into HTTP endpoints for a dashboard or external tooling.
type RunsHandler struct {
	repo ports.OptimizationRunRepository
}

func NewRunsHandler(repo ports.OptimizationRunRepository) *RunsHandler {
	return &RunsHandler{repo: repo}
}

// List returns OptimizationRuns, optionally filtered by ?status= and
// paginated with ?limit=&offset=.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := ports.ListOptimizationRunsOptions{
		Status: r.URL.Query().Get("status"),
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	}

	runs, err := h.repo.ListRuns(r.Context(), opts)
	if err != nil {
		respondError(r, w, "internal_error", "failed to list runs", http.StatusInternalServerError)
		return
	}

	respondJSON(r, w, runs, http.StatusOK)
}

// Get returns one OptimizationRun by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "run id")
	if !ok {
		return
	}

	run, err := h.repo.GetRun(r.Context(), id)
	if err != nil {
		if err == domain.ErrRunNotFound {
			respondError(r, w, "not_found", "run not found", http.StatusNotFound)
		} else {
			respondError(r, w, "internal_error", "failed to fetch run", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(r, w, run, http.StatusOK)
}

// Trials returns the full TrialRecord history for one run.
func (h *RunsHandler) Trials(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "run id")
	if !ok {
		return
	}

	trials, err := h.repo.GetTrials(r.Context(), id)
	if err != nil {
		respondError(r, w, "internal_error", "failed to fetch trials", http.StatusInternalServerError)
		return
	}

	respondJSON(r, w, trials, http.StatusOK)
}

// Best returns the highest-scoring TrialRecord for one run.
func (h *RunsHandler) Best(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "run id")
	if !ok {
		return
	}

	trial, err := h.repo.GetBestTrial(r.Context(), id)
	if err != nil {
		if err == domain.ErrTrialNotFound {
			respondError(r, w, "not_found", "no trials recorded for run", http.StatusNotFound)
		} else {
			respondError(r, w, "internal_error", "failed to fetch best trial", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(r, w, trial, http.StatusOK)
}
