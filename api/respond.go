package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"paygap/core"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError writes an error response and logs it
func writeError(w http.ResponseWriter, statusCode int, message string, err error, logger *zap.SugaredLogger) {
	if logger != nil {
		if err != nil {
			logger.Errorw(message, "error", err.Error(), "status_code", statusCode)
		} else {
			logger.Errorw(message, "status_code", statusCode)
		}
	}
	respondJSON(w, statusCode, map[string]string{"message": message})
}

// respondServiceError maps a service error onto the wire. All client faults,
// missing entities included, surface as 400 with the message verbatim; this
// is a historical contract and 404 is deliberately never used here.
func (a *API) respondServiceError(w http.ResponseWriter, err error) {
	if core.IsClientFault(err) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	writeError(w, http.StatusInternalServerError, "Something went wrong", err, a.logger)
}

// pageParams reads the offset and limit query parameters. An absent limit
// stays nil; a non-numeric value is a client fault.
func pageParams(r *http.Request) (int, *int, error) {
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, core.NewValidationError("Invalid query parameters")
		}
		offset = parsed
	}
	var limit *int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, core.NewValidationError("Invalid query parameters")
		}
		limit = &parsed
	}
	return offset, limit, nil
}
