package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondErrorDetails 发送带诊断信息的错误响应，details 为空时与 RespondError 相同
func RespondErrorDetails(w http.ResponseWriter, status int, message, details string) {
	if details == "" {
		RespondError(w, status, message)
		return
	}
	RespondJSON(w, status, map[string]string{"error": message, "details": details})
}
