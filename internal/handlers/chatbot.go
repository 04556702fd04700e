package handlers

import (
	"net/http"
	"time"

	"github.com/makemydestiny/travel-booking/internal/chatbot"
	"github.com/sirupsen/logrus"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	UserMessage string         `json:"userMessage"`
	BotResponse string         `json:"botResponse"`
	Intent      chatbot.Intent `json:"intent"`
	Timestamp   time.Time      `json:"timestamp"`
}

// ChatbotHandler answers travel questions with canned replies.
type ChatbotHandler struct {
	responder *chatbot.Responder
	log       *logrus.Entry
	now       func() time.Time
}

func NewChatbotHandler(responder *chatbot.Responder, log *logrus.Entry) *ChatbotHandler {
	return &ChatbotHandler{
		responder: responder,
		log:       log.WithField("component", "chatbot"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (h *ChatbotHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	reply, err := h.responder.Respond(r.Context(), req.Message)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusOK, chatResponse{
		UserMessage: req.Message,
		BotResponse: reply.Text,
		Intent:      reply.Intent,
		Timestamp:   h.now(),
	})
}

func (h *ChatbotHandler) FAQs(w http.ResponseWriter, r *http.Request) {
	faqs := h.responder.FAQs()
	respondList(w, faqs, len(faqs))
}
