package handlers

import (
	"encoding/json"
	"net/http"

	"leke-chat/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.ChatResponse {
	return models.ChatResponse{Success: false, Error: message}
}
