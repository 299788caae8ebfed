package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"hotelpulse/internal/common"
	"hotelpulse/internal/models/dtos/responses"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	resp := responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithDetails(w http.ResponseWriter, statusCode int, message string, details any) {
	resp := responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
		Details:   details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(resp)
}

// respondWithDomainError maps service-layer errors onto HTTP statuses.
func respondWithDomainError(w http.ResponseWriter, err error) {
	var validationErr *common.ValidationError
	if errors.As(err, &validationErr) {
		respondWithDetails(w, http.StatusUnprocessableEntity, validationErr.Error(), validationErr.Violations)
		return
	}

	var notFoundErr *common.NotFoundError
	if errors.As(err, &notFoundErr) {
		respondWithError(w, http.StatusNotFound, notFoundErr.Error())
		return
	}

	var stateErr *common.StateError
	if errors.As(err, &stateErr) {
		respondWithError(w, http.StatusConflict, stateErr.Error())
		return
	}

	if errors.Is(err, common.ErrRetryExhausted) {
		respondWithError(w, http.StatusConflict, err.Error())
		return
	}

	respondWithError(w, http.StatusInternalServerError, err.Error())
}
