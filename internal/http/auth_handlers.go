package httpapi

import (
	"net/http"

	"portfolio-backend-go/internal/services"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt int64          `json:"expiresAt"`
	User      SessionUserDTO `json:"user"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := services.Register(r.Context(), s.DB, s.Tokens, services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, MessageResponse{Message: "User registered successfully", ID: user.ID})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := services.Authenticate(r.Context(), s.DB, s.Tokens, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	token, exp, err := s.Tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		writeServiceError(w, r, services.ErrInternal("Error logging in", err))
		return
	}
	WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: exp.Unix(),
		User:      SessionUserDTO{ID: user.ID, Username: user.Username, Role: user.Role},
	})
}

// Logout is acknowledged only; sessions end when the client drops the token.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user, err := services.GetUser(r.Context(), s.DB, CurrentUserID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(user))
}
