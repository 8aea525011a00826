package web

import (
	"io"
	"net/http"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// handleSavePhoto stores the multipart "image" file on the device and returns
// its key for use in a later purchase or point-of-sale submission.
func (s *Server) handleSavePhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "failed to parse form"})
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "image file required"})
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", "error", err)
		respond(w, http.StatusInternalServerError, map[string]string{"error": "failed to read file"})
		return
	}

	key, err := s.service.SavePhoto(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, map[string]string{"key": key})
}
