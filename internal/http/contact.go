package httpapi

import (
	"net/http"

	"portfolio-backend-go/internal/services"
)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := services.SubmitContactMessage(r.Context(), s.DB, services.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, MessageResponse{Message: "Message sent successfully", ID: msg.ID})
}

func (s *Server) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListContactMessages(r.Context(), s.DB)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) MarkContactMessageRead(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(w, r, "messageId")
	if !ok {
		return
	}
	if err := services.MarkContactMessageRead(r.Context(), s.DB, messageID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Message marked as read"})
}
