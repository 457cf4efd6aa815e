package httpapi

import (
	"net/http"

	"portfolio-backend-go/internal/services"
)

type ProjectRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CategoryID  OptionalID `json:"category_id"`
	ImageURL    *string    `json:"image_url"`
	Tags        []string   `json:"tags"`
}

func (req ProjectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID.Value,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	}
}

func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListProjects(r.Context(), s.DB)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}
	item, err := services.GetProject(r.Context(), s.DB, projectID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	projectID, err := services.CreateProject(r.Context(), s.DB, CurrentUserID(r), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, MessageResponse{Message: "Project created successfully", ID: projectID})
}

func (s *Server) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}
	var req ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := services.UpdateProject(r.Context(), s.DB, projectID, req.input()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Project updated successfully", ID: projectID})
}

func (s *Server) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}
	if err := services.DeleteProject(r.Context(), s.DB, projectID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Project deleted successfully"})
}
