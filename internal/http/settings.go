package httpapi

import (
	"net/http"

	"portfolio-backend-go/internal/services"
)

// SettingsRequest accepts the web client's camelCase emailNotifications as
// well as the snake_case name the GET response uses.
type SettingsRequest struct {
	Theme                   *string `json:"theme"`
	Language                *string `json:"language"`
	EmailNotifications      *bool   `json:"emailNotifications"`
	EmailNotificationsSnake *bool   `json:"email_notifications"`
	Username                *string `json:"username"`
	Email                   *string `json:"email"`
}

func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := services.GetSettings(r.Context(), s.DB, CurrentUserID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	notifications := req.EmailNotifications
	if notifications == nil {
		notifications = req.EmailNotificationsSnake
	}
	user, err := services.UpdateSettings(r.Context(), s.DB, CurrentUserID(r), services.SettingsUpdate{
		Theme:              req.Theme,
		Language:           req.Language,
		EmailNotifications: notifications,
		Username:           req.Username,
		Email:              req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(user))
}
