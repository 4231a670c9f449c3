package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/akolanti/DocRagAPI/internal/agents"
	"github.com/akolanti/DocRagAPI/internal/api"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
	"github.com/google/uuid"
)

type AgentHandler struct {
	engine *agents.Engine
	logger *logger_i.Logger
}

func NewAgentHandler(engine *agents.Engine) *AgentHandler {
	return &AgentHandler{
		engine: engine,
		logger: logger_i.NewLogger("Agent Handler"),
	}
}

func (h *AgentHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req api.AgentRunRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		WriteErrorResponse(w, r, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	output, err := h.engine.Run(r.Context(), req.Message, req.UserID, req.SessionID)
	if err != nil {
		h.logger.Error("Agent run failed", "session_id", req.SessionID, "error", err)
		WriteErrorResponse(w, r, http.StatusInternalServerError, "Agent run failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.AgentRunResponse{Output: output, TraceID: traceID(r)})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
