package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/api/response"
	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/service"
)

var validate = validator.New()

// ChatRequest is the inbound message payload. A missing conversation id
// means "create a new conversation".
type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Message        string `json:"message" validate:"required"`
}

// ChatHandler exposes the coordinator over HTTP.
type ChatHandler struct {
	coordinator *service.Coordinator
}

func NewChatHandler(coordinator *service.Coordinator) *ChatHandler {
	return &ChatHandler{coordinator: coordinator}
}

// Send handles one inbound customer message.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	reply, err := h.coordinator.Handle(r.Context(), req.ConversationID, req.UserID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, reply)
}

// History returns a conversation's turns.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	conv, err := h.coordinator.History(r.Context(), conversationID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, conv)
}

// Delete removes a conversation and its session state.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	if err := h.coordinator.Delete(r.Context(), conversationID); err != nil {
		writeError(w, err)
		return
	}

	response.NoContent(w)
}

// writeError maps error kinds to status codes. Internal detail is logged,
// never sent to the user.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		response.Forbidden(w, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		response.InternalError(w, "something went wrong, please try again")
	}
}
