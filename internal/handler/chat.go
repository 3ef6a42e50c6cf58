package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/burakyalinat/portfolio/internal/chat"
)

// maxChatBytes caps the chat request body.
const maxChatBytes = 16 << 10

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatHandler exposes the chat proxy to the browser widget.
type ChatHandler struct {
	proxy  *chat.Proxy
	logger *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(proxy *chat.Proxy, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{proxy: proxy, logger: logger}
}

// HandleChat serves POST /api/chat.
//
//	200 {"response": "..."}  model reply
//	400 {"error": "..."}     bad JSON or empty message
//	500 {"error": "..."}     no API key or provider failure (details logged)
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	reply, err := h.proxy.Reply(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: reply})
}
