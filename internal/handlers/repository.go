package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/services"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
)

const (
	uploadTimeout   = 2 * time.Minute
	multipartMemory = 8 << 20
)

type itemResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Item    *models.RepositoryItem `json:"item"`
}

type itemsResponse struct {
	Success bool                    `json:"success"`
	Items   []models.RepositoryItem `json:"items"`
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	items, err := h.svc.Repository.List(ctx, r.URL.Query().Get("q"), pageFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Success: true, Items: items})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	item, err := h.svc.Repository.Get(ctx, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{Success: true, Item: item})
}

// UploadItem accepts multipart fields title, description, tags and file.
func (h *Handler) UploadItem(w http.ResponseWriter, r *http.Request) {
	// Headroom for the non-file fields and multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, err)
			return
		}
		writeError(w, r, utils.Invalid("file", "Expected a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, utils.Invalid("file", "file is required"))
		return
	}
	defer file.Close()
	if header.Size > h.opts.MaxUploadBytes {
		writeError(w, r, &http.MaxBytesError{Limit: h.opts.MaxUploadBytes})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()
	item, err := h.svc.Repository.Upload(ctx, principal(r).UserID, services.UploadInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
		FileName:    filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemResponse{Success: true, Message: "File uploaded", Item: item})
}

// DownloadItem streams local files as attachments and redirects to remote ones.
func (h *Handler) DownloadItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	item, f, err := h.svc.Repository.Open(ctx, param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if f == nil {
		http.Redirect(w, r, item.FileURL, http.StatusFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", item.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": item.FileName}))
	if item.Checksum != "" {
		w.Header().Set("ETag", `"`+item.Checksum+`"`)
	}
	http.ServeContent(w, r, item.FileName, item.CreatedAt, f)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storageCtx(r)
	defer cancel()
	if err := h.svc.Repository.Delete(ctx, principal(r).UserID, param(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Item deleted")
}
