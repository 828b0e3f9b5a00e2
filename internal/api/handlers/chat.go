// HTTP handler for the chatbot widget's conversation turns.
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/zohaibasghar/portfolio-server/internal/infra/ai"
)

// ChatHandler proxies one conversation turn to the configured AI provider.
type ChatHandler struct {
	provider      ai.Provider
	exposeDetails bool
}

// NewChatHandler creates a ChatHandler. exposeDetails controls whether the
// error envelope carries diagnostic detail; production deployments keep it
// off.
func NewChatHandler(provider ai.Provider, exposeDetails bool) *ChatHandler {
	return &ChatHandler{provider: provider, exposeDetails: exposeDetails}
}

// chatRequest is the request body for a chat turn: the full conversation
// so far, oldest first, ending with the message to answer.
type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the success envelope.
type chatResponse struct {
	Response string `json:"response"`
}

// errorResponse is the failure envelope. Details is only populated outside
// production.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Messages == nil {
		writeError(w, http.StatusBadRequest, "messages array is required")
		return
	}

	// Normalize: absent role defaults to user, absent content to "".
	messages := make([]ai.Message, len(req.Messages))
	for i, m := range req.Messages {
		role := m.Role
		if role == "" {
			role = ai.RoleUser
		}
		messages[i] = ai.Message{Role: role, Content: m.Content}
	}

	text, err := h.provider.Chat(r.Context(), messages)
	if err != nil {
		// Full detail at the point of occurrence; a sanitized message
		// crosses the response boundary.
		log.Printf("chat: provider error: %v", err)
		h.writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: text})
}

// writeChatError surfaces the typed error's message (actionable, carries
// no secrets) plus diagnostic detail outside production.
func (h *ChatHandler) writeChatError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	if h.exposeDetails {
		resp.Details = fmt.Sprintf("%+v", err)
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
