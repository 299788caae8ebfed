package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotelpulse/internal/db/repositories"
	"hotelpulse/internal/models/dtos"
	"hotelpulse/internal/services"
)

// GetTaskHandler handles GET /api/v1/tasks/{taskId}
//
// @Summary Fetch one async task's status and result
// @Tags Tasks
// @Produce json
// @Router /api/v1/tasks/{taskId} [get]
func GetTaskHandler(ledger *services.TaskLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := chi.URLParam(r, "taskId")
		if taskID == "" {
			respondWithError(w, http.StatusBadRequest, "task id is required")
			return
		}

		snap, err := ledger.Get(r.Context(), taskID)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, snap)
	}
}

// ListTasksHandler handles GET /api/v1/tasks
//
// @Summary List recent async tasks
// @Tags Tasks
// @Produce json
// @Router /api/v1/tasks [get]
func ListTasksHandler(ledger *services.TaskLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := dtos.TaskListQuery{
			TaskType: r.URL.Query().Get("task_type"),
			Status:   r.URL.Query().Get("status"),
			Limit:    parseIntParam(r, "limit", 20),
			Offset:   parseIntParam(r, "offset", 0),
		}
		if err := validate.Struct(&query); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid query: "+err.Error())
			return
		}

		snaps, err := ledger.List(r.Context(), repositories.TaskListFilter{
			TaskType: query.TaskType,
			Status:   query.Status,
			Limit:    query.Limit,
			Offset:   query.Offset,
		})
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &snaps)
	}
}

// RetryTaskHandler handles POST /api/v1/tasks/{taskId}/retry
//
// @Summary Move a failed task back to pending, consuming one retry
// @Tags Tasks
// @Produce json
// @Router /api/v1/tasks/{taskId}/retry [post]
func RetryTaskHandler(ledger *services.TaskLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := chi.URLParam(r, "taskId")
		if taskID == "" {
			respondWithError(w, http.StatusBadRequest, "task id is required")
			return
		}

		snap, err := ledger.Retry(r.Context(), taskID)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, snap)
	}
}
