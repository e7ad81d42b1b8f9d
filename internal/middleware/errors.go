package middleware

import (
	"encoding/json"
	"net/http"

	"leke-chat/internal/models"
)

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ChatResponse{Success: false, Error: message})
}
