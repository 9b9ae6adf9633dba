package history

import (
	"strings"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

// Assembly is the backend-ready form of one inbound turn.
type Assembly struct {
	History []chat.Entry
	Prompt  string
}

// Assembler turns caller supplied turns into backend history. It is pure:
// the same input always produces the same Assembly.
type Assembler struct {
	systemInstruction string
}

// NewAssembler creates an assembler that anchors new sessions with systemInstruction.
func NewAssembler(systemInstruction string) *Assembler {
	return &Assembler{systemInstruction: strings.TrimSpace(systemInstruction)}
}

// SystemInstruction returns the block prepended on the first turn.
func (a *Assembler) SystemInstruction() string {
	return a.systemInstruction
}

// Assemble maps prior turns to the two backend roles and builds the prompt.
// With no prior turns the system instruction is prepended to the prompt, since
// the backend may not offer a system role; later turns rely on turn one.
func (a *Assembler) Assemble(prior []chat.Turn, message string) Assembly {
	entries := make([]chat.Entry, 0, len(prior))
	for _, turn := range prior {
		entries = append(entries, chat.Entry{
			Role:    chat.ParseRole(turn.Role),
			Content: turn.Content,
		})
	}

	prompt := message
	if len(prior) == 0 && a.systemInstruction != "" {
		prompt = a.systemInstruction + "\n\n" + message
	}

	return Assembly{History: entries, Prompt: prompt}
}
