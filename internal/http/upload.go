package httpapi

import (
	"net/http"

	"portfolio-backend-go/internal/services"
)

// multipart framing allowance on top of the file limit
const multipartOverhead = 64 << 10

func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.Config.UploadMaxBytes+multipartOverhead)
	file, _, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	stored, err := services.SaveUpload(r.Context(), s.Storage, file, s.Config.UploadMaxBytes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, stored)
}
