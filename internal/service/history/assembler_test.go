package history_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
	"github.com/cqle/dba-virtual/backend/internal/service/history"
)

const instruction = "Você é o CQLE DBA VIRTUAL.\n[ALERTA DE PERIGO]: avise o risco."

func TestAssembleFirstTurnInjectsInstruction(t *testing.T) {
	a := history.NewAssembler(instruction)
	got := a.Assemble(nil, "Como crio um índice?")

	if !strings.Contains(got.Prompt, instruction) {
		t.Fatalf("prompt missing system instruction: %q", got.Prompt)
	}
	if !strings.HasSuffix(got.Prompt, "Como crio um índice?") {
		t.Fatalf("prompt must end with the user message: %q", got.Prompt)
	}
	if len(got.History) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(got.History))
	}
}

func TestAssembleLaterTurnDoesNotReinject(t *testing.T) {
	a := history.NewAssembler(instruction)
	prior := []chat.Turn{
		{Role: "user", Content: "oi"},
		{Role: "assistant", Content: "olá"},
	}
	got := a.Assemble(prior, "e agora?")

	if got.Prompt != "e agora?" {
		t.Fatalf("expected raw message as prompt, got %q", got.Prompt)
	}
}

func TestAssembleMapsRoles(t *testing.T) {
	a := history.NewAssembler(instruction)
	prior := []chat.Turn{
		{Role: "user", Content: "1"},
		{Role: "assistant", Content: "2"},
		{Role: "model", Content: "3"},
		{Role: "system", Content: "4"},
	}
	got := a.Assemble(prior, "5")

	want := []chat.Entry{
		{Role: chat.RoleUser, Content: "1"},
		{Role: chat.RoleAssistant, Content: "2"},
		{Role: chat.RoleAssistant, Content: "3"},
		{Role: chat.RoleAssistant, Content: "4"},
	}
	if !reflect.DeepEqual(got.History, want) {
		t.Fatalf("unexpected history: %+v", got.History)
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := history.NewAssembler(instruction)
	prior := []chat.Turn{{Role: "user", Content: "x"}}

	first := a.Assemble(prior, "y")
	second := a.Assemble(prior, "y")
	if !reflect.DeepEqual(first, second) {
		t.Fatal("assemble must be deterministic")
	}
}
