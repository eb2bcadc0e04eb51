package main

import (
	"encoding/json"
	"net/http"

	"embedded-api/calendar"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeUpstreamError surfaces a calendar API failure, attaching the decoded
// Google error body when there is one.
func writeUpstreamError(w http.ResponseWriter, err error) {
	payload := map[string]any{"error": err.Error()}
	if detail := calendar.UpstreamDetail(err); detail != nil {
		payload["detail"] = detail
	}
	writeJSON(w, http.StatusInternalServerError, payload)
}
