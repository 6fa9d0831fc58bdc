package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type envelope map[string]any

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", slog.Any("err", err))
	}
}

// Error — унифицированная ошибка: message + опциональные структурные детали
// (счётчики комнаты, конфликтная session_id и т.п.).
func Error(w http.ResponseWriter, status int, msg string, meta map[string]any) {
	payload := envelope{
		"success": false,
		"error":   msg,
	}
	for k, v := range meta {
		payload[k] = v
	}
	JSON(w, status, payload)
}
