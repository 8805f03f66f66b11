package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the error body of every JSON endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, errCode, msg string) {
	WriteJSON(w, status, ErrorResponse{Code: errCode, Message: msg})
}

// WriteInternal logs err and answers 500 with msg only; err never reaches the client.
func WriteInternal(w http.ResponseWriter, log *slog.Logger, msg string, err error, attrs ...any) {
	if log == nil {
		log = slog.Default()
	}
	log.Error(msg, append(attrs, "err", err)...)
	WriteError(w, http.StatusInternalServerError, "internal", msg)
}
