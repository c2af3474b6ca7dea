package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"firsttime/app/models"
)

const (
	// DurabilityHeader reports whether a mutation reached durable storage.
	DurabilityHeader = "X-Durability"

	maxBodyBytes = 1 << 20
)

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "internal server error"

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		switch appErr.Code {
		case models.CodeValidation:
			status = http.StatusBadRequest
		case models.CodeNotFound:
			status = http.StatusNotFound
		case models.CodeUnauthorized:
			status = http.StatusUnauthorized
		case models.CodePersistence:
			status = http.StatusServiceUnavailable
		}
	}
	sendJSON(w, status, map[string]string{"error": message, "code": code})
}

// sendMutation answers a store mutation. A persistence failure does not
// undo the mutation, so the caller still gets the success status and the
// applied entity, flagged through the durability header.
func sendMutation(w http.ResponseWriter, status int, data interface{}, err error) {
	if err != nil && !models.IsPersistence(err) {
		sendError(w, err)
		return
	}
	if err != nil {
		w.Header().Set(DurabilityHeader, "failed")
	} else {
		w.Header().Set(DurabilityHeader, "saved")
	}
	if data == nil {
		w.WriteHeader(status)
		return
	}
	sendJSON(w, status, data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("request body is required")
		}
		return models.NewValidationError("invalid JSON: " + err.Error())
	}
	return nil
}
