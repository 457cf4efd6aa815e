package httpapi

import (
	"net/http"

	"portfolio-backend-go/internal/models"
	"portfolio-backend-go/internal/services"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type DashboardResponse struct {
	Message    string                     `json:"message"`
	Statistics services.UserStatistics    `json:"statistics"`
	Content    services.ContentStatistics `json:"content"`
	System     *services.MetricSample     `json:"system"`
}

func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := services.LoadDashboard(r.Context(), s.DB)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := DashboardResponse{
		Message:    "Welcome to admin dashboard",
		Statistics: dash.Statistics,
		Content:    dash.Content,
	}
	if s.MetricsHub != nil {
		if sample, ok := s.MetricsHub.Latest(); ok {
			resp.System = &sample
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := services.ListUsers(r.Context(), s.DB)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTOs(users))
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := services.Register(r.Context(), s.DB, s.Tokens, services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toUserDTO(user))
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := services.UpdateUserProfile(r.Context(), s.DB, userID, services.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

func (s *Server) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := services.UpdateUserRole(r.Context(), s.DB, userID, req.Role); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "User role updated successfully"})
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	if userID == CurrentUserID(r) {
		WriteError(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}
	if err := services.DeleteUser(r.Context(), s.DB, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}
