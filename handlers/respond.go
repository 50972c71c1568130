package handlers

import (
	"encoding/json"
	"net/http"
)

type JSONResponse map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, JSONResponse{"status": "ok"})
}
