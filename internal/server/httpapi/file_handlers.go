package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/chathub/internal/common"
	"github.com/dmitrijs2005/chathub/internal/server/models"
)

type uploadRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type fileDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toFileDTO(f *models.File) fileDTO {
	return fileDTO{ID: f.ID, Name: f.Name, ContentType: f.ContentType, Size: f.Size, CreatedAt: f.CreatedAt}
}

func (s *Server) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrMissingToken)
		return
	}

	var req uploadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	file, uploadURL, err := s.files.Upload(r.Context(), identity.UserID, req.Name, req.ContentType, req.Size)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "upload url issued", map[string]any{
		"file":      toFileDTO(file),
		"uploadUrl": uploadURL,
	})
}

func (s *Server) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrMissingToken)
		return
	}

	file, downloadURL, err := s.files.DownloadURL(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"file":        toFileDTO(file),
		"downloadUrl": downloadURL,
	})
}
