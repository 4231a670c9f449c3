package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akolanti/DocRagAPI/internal/adapter"
	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
)

var logRH = logger_i.NewLogger("Handlers")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, r *http.Request, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.NewError(httpCode, message, traceID(r)))
}

func traceID(r *http.Request) string {
	id, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	return id
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
