package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"embedded-api/media"
	"embedded-api/security"
	"github.com/gorilla/mux"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxSearchLen     = 100
)

type mediaHandler struct {
	store      media.Store
	limits     media.Limits
	adminToken string
}

func registerMediaRoutes(r *mux.Router, store media.Store, limits media.Limits, adminToken string) {
	h := &mediaHandler{
		store:      store,
		limits:     limits,
		adminToken: adminToken,
	}
	r.HandleFunc("/api/media", h.handleList).Methods("GET")
	r.HandleFunc("/api/media", h.handleCreate).Methods("POST")
}

type mediaListResponse struct {
	Items      []*media.Item `json:"items"`
	NextCursor *string       `json:"nextCursor"`
}

func (h *mediaHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseMediaQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, next, err := h.store.List(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []*media.Item{}
	}

	resp := mediaListResponse{Items: items}
	if next != "" {
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseMediaQuery(r *http.Request) (media.Query, error) {
	q := media.Query{
		Limit:  defaultListLimit,
		Cursor: r.URL.Query().Get("cursor"),
	}

	switch kind := r.URL.Query().Get("kind"); kind {
	case "", media.KindProject, media.KindWorkshop, media.KindOther:
		q.Kind = kind
	default:
		return q, fmt.Errorf("kind must be project, workshop or other")
	}

	if search := r.URL.Query().Get("q"); search != "" {
		if len(search) > maxSearchLen {
			return q, fmt.Errorf("q must be at most %d characters", maxSearchLen)
		}
		q.Search = search
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			return q, fmt.Errorf("limit must be an integer between 1 and %d", maxListLimit)
		}
		q.Limit = n
	}

	q.MarkdownOnly = strings.EqualFold(r.URL.Query().Get("only"), "markdown")
	return q, nil
}

func (h *mediaHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !security.CheckAdmin(r, h.adminToken) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req media.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	item, err := media.NewItem(&req, h.limits)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Add(r.Context(), item); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Save failed: %v", err))
		return
	}
	writeJSON(w, http.StatusCreated, item)
}
