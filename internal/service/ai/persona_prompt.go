package ai

import (
	"fmt"
	"strings"

	"github.com/cqle/dba-virtual/backend/internal/model/persona"
)

// PromptTemplate defines the structure for persona prompts
type PromptTemplate struct {
	SystemPrompt string
	ContextRules []string
}

// PersonaPromptManager manages prompt templates for different personas
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPersonaPromptManager creates a new prompt manager with default templates
func NewPersonaPromptManager() *PersonaPromptManager {
	manager := &PersonaPromptManager{
		templates: make(map[string]*PromptTemplate),
	}
	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the prompt template for a given persona
func (pm *PersonaPromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildSystemInstruction renders the fixed instruction block for p: identity,
// numbered directives (the destructive-statement warning among them) and expertise.
func (pm *PersonaPromptManager) BuildSystemInstruction(p persona.Persona) string {
	header := fmt.Sprintf("Você é o \"%s\", %s.", p.Name, p.Title)
	rules := append([]string(nil), p.Directives...)

	if template, err := pm.GetPromptTemplate(p.ID); err == nil {
		if template.SystemPrompt != "" {
			header = template.SystemPrompt
		}
		rules = append(rules, template.ContextRules...)
	}

	var b strings.Builder
	b.WriteString(header)
	if len(rules) > 0 {
		b.WriteString("\nDIRETRIZES:")
		for i, rule := range rules {
			fmt.Fprintf(&b, "\n%d. %s", i+1, rule)
		}
	}
	if len(p.Expertise) > 0 {
		b.WriteString("\nEspecialidades: ")
		b.WriteString(strings.Join(p.Expertise, ", "))
		b.WriteString(".")
	}
	return b.String()
}

// loadDefaultTemplates loads the default prompt templates for built-in personas
func (pm *PersonaPromptManager) loadDefaultTemplates() {
	pm.templates[persona.DefaultID] = &PromptTemplate{
		SystemPrompt: `Você é o "CQLE DBA VIRTUAL", Consultor Sênior em Banco de Dados.`,
		ContextRules: []string{
			"Responda em português, com exemplos de SQL em blocos de código.",
			"Antes de sugerir índices ou reescritas, pergunte pelo plano de execução quando ele não for informado.",
		},
	}

	pm.templates["dba-tutor"] = &PromptTemplate{
		ContextRules: []string{
			"Use exemplos pequenos e progressivos.",
		},
	}
}
