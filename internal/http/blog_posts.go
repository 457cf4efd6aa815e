package httpapi

import (
	"net/http"

	"portfolio-backend-go/internal/models"
	"portfolio-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type BlogPostRequest struct {
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Excerpt           *string    `json:"excerpt"`
	ImageURL          *string    `json:"image_url"`
	MetaTitle         *string    `json:"meta_title"`
	MetaDescription   *string    `json:"meta_description"`
	Keywords          []string   `json:"keywords"`
	CategoryID        OptionalID `json:"category_id"`
	Status            string     `json:"status"`
	Tags              []string   `json:"tags"`
	RelatedProjectIDs []int64    `json:"related_project_ids"`
	RelatedPostIDs    []int64    `json:"related_post_ids"`
}

func (req BlogPostRequest) input() services.BlogPostInput {
	return services.BlogPostInput{
		Title:             req.Title,
		Content:           req.Content,
		Excerpt:           req.Excerpt,
		ImageURL:          req.ImageURL,
		MetaTitle:         req.MetaTitle,
		MetaDescription:   req.MetaDescription,
		Keywords:          req.Keywords,
		CategoryID:        req.CategoryID.Value,
		Status:            models.PostStatus(req.Status),
		Tags:              req.Tags,
		RelatedProjectIDs: req.RelatedProjectIDs,
		RelatedPostIDs:    req.RelatedPostIDs,
	}
}

func (s *Server) ListBlogPosts(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListBlogPosts(r.Context(), s.DB, false)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) AdminListBlogPosts(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListBlogPosts(r.Context(), s.DB, true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

// ReadBlogPost is the public detail read; every hit counts a view.
func (s *Server) ReadBlogPost(w http.ResponseWriter, r *http.Request) {
	item, err := services.ReadBlogPost(r.Context(), s.DB, chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (s *Server) AdminGetBlogPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "ref")
	if !ok {
		return
	}
	item, err := services.GetBlogPostByID(r.Context(), s.DB, postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (s *Server) CreateBlogPost(w http.ResponseWriter, r *http.Request) {
	var req BlogPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	postID, slug, err := services.CreateBlogPost(r.Context(), s.DB, CurrentUserID(r), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, MessageResponse{Message: "Blog post created successfully", ID: postID, Slug: slug})
}

func (s *Server) UpdateBlogPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "ref")
	if !ok {
		return
	}
	var req BlogPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	slug, err := services.UpdateBlogPost(r.Context(), s.DB, postID, req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Blog post updated successfully", ID: postID, Slug: slug})
}

func (s *Server) DeleteBlogPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "ref")
	if !ok {
		return
	}
	if err := services.DeleteBlogPost(r.Context(), s.DB, postID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Blog post deleted successfully"})
}
