package main

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"embedded-api/blob"
	"embedded-api/ghpr"
	"embedded-api/media"
	"embedded-api/security"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// blobStore is the upload target for the direct upload path.
type blobStore interface {
	Put(ctx context.Context, pathname, contentType string, data []byte) (*blob.PutResult, error)
}

// prUploader is the source-control collaborator for the PR-based upload path.
type prUploader interface {
	CreatePR(ctx context.Context, branch, title, body string, files []ghpr.UploadFile) (*ghpr.Result, error)
}

type uploadHandler struct {
	blobs      blobStore
	pr         prUploader
	limits     media.Limits
	adminToken string
}

func registerUploadRoutes(r *mux.Router, blobs blobStore, pr prUploader, limits media.Limits, adminToken string) {
	h := &uploadHandler{
		blobs:      blobs,
		pr:         pr,
		limits:     limits,
		adminToken: adminToken,
	}
	r.HandleFunc("/api/media/upload", h.handleBlobUpload).Methods("POST")
	r.HandleFunc("/api/media/upload-gh", h.handleGitHubUpload).Methods("POST")
}

// uploadedPart is one validated multipart file, fully read into memory.
type uploadedPart struct {
	name string
	mime string
	data []byte
}

// readParts parses the multipart form and validates every file before
// anything is sent upstream, so a bad file aborts the whole request early.
func (h *uploadHandler) readParts(r *http.Request) ([]uploadedPart, error) {
	if err := r.ParseMultipartForm(h.limits.MaxTotalSize); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %v", err)
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, fmt.Errorf("at least one file is required")
	}
	if len(headers) > h.limits.MaxFiles {
		return nil, fmt.Errorf("files must contain 1-%d entries", h.limits.MaxFiles)
	}

	parts := make([]uploadedPart, 0, len(headers))
	var total int64
	for _, hdr := range headers {
		part, err := h.readPart(hdr)
		if err != nil {
			return nil, err
		}
		total += int64(len(part.data))
		if total > h.limits.MaxTotalSize {
			return nil, fmt.Errorf("total upload size exceeds %d bytes", h.limits.MaxTotalSize)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func (h *uploadHandler) readPart(hdr *multipart.FileHeader) (uploadedPart, error) {
	name := filepath.Base(hdr.Filename)
	mime := hdr.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}

	file, err := hdr.Open()
	if err != nil {
		return uploadedPart{}, fmt.Errorf("%s: %v", name, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.limits.MaxFileSize+1))
	if err != nil {
		return uploadedPart{}, fmt.Errorf("%s: %v", name, err)
	}
	if err := media.ValidateUpload(name, mime, int64(len(data)), h.limits); err != nil {
		return uploadedPart{}, err
	}
	return uploadedPart{name: name, mime: mime, data: data}, nil
}

func (h *uploadHandler) handleBlobUpload(w http.ResponseWriter, r *http.Request) {
	if !security.CheckAdmin(r, h.adminToken) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.blobs == nil {
		writeError(w, http.StatusInternalServerError, "blob storage not configured")
		return
	}

	parts, err := h.readParts(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	files := make([]media.File, 0, len(parts))
	for _, part := range parts {
		pathname := fmt.Sprintf("media/%s-%s", uuid.New().String()[:8], part.name)
		res, err := h.blobs.Put(r.Context(), pathname, part.mime, part.data)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		files = append(files, media.File{
			URL:  res.URL,
			Name: part.name,
			Type: part.mime,
			Size: int64(len(part.data)),
		})
	}

	writeJSON(w, http.StatusCreated, map[string]any{"files": files})
}

func (h *uploadHandler) handleGitHubUpload(w http.ResponseWriter, r *http.Request) {
	if !security.CheckAdmin(r, h.adminToken) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.pr == nil {
		writeError(w, http.StatusInternalServerError, "source-control upload not configured")
		return
	}

	parts, err := h.readParts(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = "Add media upload"
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	branch := fmt.Sprintf("media-upload-%s-%s", stamp, uuid.New().String()[:8])
	dir := "media/" + stamp

	files := make([]ghpr.UploadFile, 0, len(parts))
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		files = append(files, ghpr.UploadFile{
			Path:    dir + "/" + part.name,
			Content: part.data,
		})
		names = append(names, part.name)
	}

	res, err := h.pr.CreatePR(r.Context(), branch, title, "Uploaded via the media API.", files)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"pullRequestUrl": res.PullRequestURL,
		"branch":         res.Branch,
		"files":          names,
	})
}
