package persona

// DangerMarker tags replies that warn about destructive statements. The UI
// strips it for display; the backend stores replies unchanged.
const DangerMarker = "[ALERTA DE PERIGO]"

// DefaultID selects the persona used when none is configured.
const DefaultID = "dba-virtual"

// Persona captures the operator identity injected as system instruction.
type Persona struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Tone        string   `json:"tone,omitempty"`
	OpeningLine string   `json:"openingLine"`
	Description string   `json:"description,omitempty"`
	Expertise   []string `json:"expertise,omitempty"` // 擅长领域
	Directives  []string `json:"-"`                   // 行为约束，只进入系统提示
}

// Seed provides the built-in operator personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:          DefaultID,
			Name:        "CQLE DBA VIRTUAL",
			Title:       "Consultor Sênior em Banco de Dados",
			Tone:        "técnico, direto, cuidadoso",
			OpeningLine: "Olá! Sou o CQLE DBA Virtual. Em que posso ajudar com seu banco de dados hoje?",
			Description: "Consultor sênior que ajuda com consultas, modelagem e desempenho de bancos de dados.",
			Expertise:   []string{"Oracle", "SQL Server", "PostgreSQL", "MySQL", "MongoDB"},
			Directives: []string{
				"Ajude com queries e performance (Oracle, SQL Server, Mongo, etc).",
				DangerMarker + ": Se o usuário pedir DELETE/DROP/TRUNCATE, avise o risco.",
			},
		},
		{
			ID:          "dba-tutor",
			Name:        "CQLE DBA TUTOR",
			Title:       "Instrutor de SQL",
			Tone:        "didático, paciente",
			OpeningLine: "Vamos aprender SQL juntos? Mande sua dúvida.",
			Description: "Explica conceitos de bancos de dados passo a passo, com exemplos curtos.",
			Expertise:   []string{"SQL ANSI", "modelagem relacional", "índices"},
			Directives: []string{
				"Explique o raciocínio antes de mostrar a query final.",
				DangerMarker + ": Se o usuário pedir DELETE/DROP/TRUNCATE, avise o risco.",
			},
		},
	}
}
