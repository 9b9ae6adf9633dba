package failure

import (
	"net/http"
	"strings"
)

// Kind 表示上游生成失败的分类。
type Kind string

const (
	QuotaExceeded    Kind = "quota_exceeded"
	ModelNotFound    Kind = "model_not_found"
	TransportFailure Kind = "transport_failure"
	Unknown          Kind = "unknown"
)

// Decision is the caller-safe view of a failure.
type Decision struct {
	Kind       Kind
	StatusCode int
	Message    string
}

type rule struct {
	kind     Kind
	code     int
	status   int
	message  string
	patterns []string
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		kind:     QuotaExceeded,
		code:     http.StatusTooManyRequests,
		status:   http.StatusTooManyRequests,
		message:  "O sistema está com alta demanda no momento. Aguarde alguns instantes e tente novamente.",
		patterns: []string{"429", "Quota exceeded"},
	},
	{
		kind:     ModelNotFound,
		code:     http.StatusNotFound,
		status:   http.StatusInternalServerError,
		message:  "Erro de configuração do modelo de IA. Contate o administrador.",
		patterns: []string{"404"},
	},
	{
		kind:    TransportFailure,
		status:  http.StatusInternalServerError,
		message: "Não foi possível conectar ao serviço de IA. Verifique a rede ou o firewall.",
		patterns: []string{
			"fetch failed",
			"dial tcp",
			"no such host",
			"connection refused",
			"connection reset",
			"i/o timeout",
			"TLS handshake",
			"context deadline exceeded",
		},
	},
}

var unknownDecision = Decision{
	Kind:       Unknown,
	StatusCode: http.StatusInternalServerError,
	Message:    "Erro interno ao processar sua solicitação. Tente novamente mais tarde.",
}

// Classify maps a raw upstream error message and optional status code
// (0 when absent) to a Decision. Every input maps to exactly one Kind.
func Classify(rawMessage string, rawCode int) Decision {
	for _, r := range rules {
		if r.matches(rawMessage, rawCode) {
			return Decision{Kind: r.kind, StatusCode: r.status, Message: r.message}
		}
	}
	return unknownDecision
}

func (r rule) matches(msg string, code int) bool {
	if r.code != 0 && code == r.code {
		return true
	}
	for _, p := range r.patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// Unconfigured is returned when no generation backend is available at all.
func Unconfigured() Decision {
	for _, r := range rules {
		if r.kind == ModelNotFound {
			return Decision{Kind: r.kind, StatusCode: r.status, Message: r.message}
		}
	}
	return unknownDecision
}
