package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"hotelpulse/internal/models/dtos"
	"hotelpulse/internal/services"
)

var validate = validator.New()

// IngestHandler handles POST /api/v1/data/ingest
//
// The batch is validated and committed on the worker pool; the response
// carries the task id to poll.
//
// @Summary Ingest a batch of hotel metric records
// @Tags Data
// @Accept json
// @Produce json
// @Success 202 {object} dtos.IngestAccepted
// @Router /api/v1/data/ingest [post]
func IngestHandler(ingestion *services.IngestionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		if err := validate.Struct(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}

		if req.DataSource == "" {
			req.DataSource = "api"
		}

		taskID, err := ingestion.IngestAsync(r.Context(), req)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusAccepted, &dtos.IngestAccepted{TaskID: taskID})
	}
}
