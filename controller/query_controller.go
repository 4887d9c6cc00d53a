package controller

import (
	"encoding/json"
	"net/http"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/server"
	"go.uber.org/zap"

	"github.com/sachin-patro/starting-ragchatbot-codebase/middleware"
	"github.com/sachin-patro/starting-ragchatbot-codebase/model"
	"github.com/sachin-patro/starting-ragchatbot-codebase/rag"
)

// QueryController handles chat queries from the frontend.
type QueryController struct {
	system *rag.System
	auth   *middleware.APIKeyAuth
}

// ProvideQueryController creates a new QueryController instance.
func ProvideQueryController(system *rag.System, auth *middleware.APIKeyAuth) *QueryController {
	return &QueryController{system: system, auth: auth}
}

// HandleQuery handles POST requests for one chat turn.
func (c *QueryController) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req model.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "Query is required", http.StatusBadRequest)
		return
	}

	response, err := c.system.Query(r.Context(), req.Query, req.SessionID)
	if err != nil {
		logger.Error("Failed to process query", zap.Error(err))
		http.Error(w, "Failed to process query", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
		// Note: headers may already be written, cannot send http.Error
		return
	}

	logger.Info("Query processed",
		zap.String("query", req.Query),
		zap.String("session", response.SessionID),
		zap.Int("sources", len(response.Sources)))
}

// HandleClearSession handles POST requests that reset a chat session.
func (c *QueryController) HandleClearSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	c.system.ClearSession(req.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (c *QueryController) Routes() []server.Route {
	return []server.Route{
		{
			Pattern: "/api/query",
			Method:  http.MethodPost,
			Handler: c.auth.Wrap(c.HandleQuery),
		},
		{
			Pattern: "/api/session/clear",
			Method:  http.MethodPost,
			Handler: c.auth.Wrap(c.HandleClearSession),
		},
	}
}
