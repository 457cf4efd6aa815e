package httpapi

import (
	"net/http"

	"portfolio-backend-go/internal/services"
)

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (req CategoryRequest) input() services.CategoryInput {
	return services.CategoryInput{Name: req.Name, Description: req.Description}
}

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListCategories(r.Context(), s.DB)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := services.CreateCategory(r.Context(), s.DB, req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, item)
}

func (s *Server) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}
	var req CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := services.UpdateCategory(r.Context(), s.DB, categoryID, req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}
	if err := services.DeleteCategory(r.Context(), s.DB, categoryID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}

func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := services.ListTags(r.Context(), s.DB)
	if err != nil {
		writeServiceError(w, r, services.ErrInternal("Error fetching tags", err))
		return
	}
	WriteJSON(w, http.StatusOK, tags)
}
