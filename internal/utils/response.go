package utils

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		w.Write([]byte("null"))
		return
	}
	json.NewEncoder(w).Encode(body)
}

// WriteError writes the storefront error envelope. Messages are
// human-readable strings meant for direct display in the UI.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
