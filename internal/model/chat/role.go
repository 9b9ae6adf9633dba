package chat

// Role tags who produced a turn. Only two values exist.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a caller supplied role onto Role. Anything other than the
// literal "user" is treated as model produced.
func ParseRole(raw string) Role {
	if raw == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

// Turn is a prior exchange entry as the caller sends it back with each request.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Entry is a normalized history entry handed to a generation backend.
type Entry struct {
	Role    Role
	Content string
}
