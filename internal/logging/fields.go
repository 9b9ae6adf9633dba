package logging

const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	FieldService   = "service"
	FieldOwner     = "owner"
	FieldSessionID = "session_id"
	FieldKind      = "kind"
	FieldBackend   = "backend"
)
