package risk

import (
	"regexp"
	"strings"

	"github.com/cqle/dba-virtual/backend/internal/model/persona"
)

// Level 表示一次请求涉及的数据风险等级。
type Level string

const (
	None        Level = "none"
	Caution     Level = "caution"
	Destructive Level = "destructive"
)

// Assessment 给出风险识别结果以及回复是否带有警告标记。
type Assessment struct {
	Level      Level
	Statements []string
	Warned     bool
	Score      int
}

// Unwarned reports a destructive request answered without the danger marker.
func (a Assessment) Unwarned() bool {
	return a.Level == Destructive && !a.Warned
}

var statementBuckets = map[Level][]*regexp.Regexp{
	Destructive: {
		regexp.MustCompile(`\bdrop\s+(table|database|schema|index|view|collection|user)\b`),
		regexp.MustCompile(`\btruncate\b`),
		regexp.MustCompile(`\bdelete\s+from\b`),
		regexp.MustCompile(`\.drop\(\)`),
		regexp.MustCompile(`\.(deletemany|remove)\(`),
	},
	Caution: {
		regexp.MustCompile(`\balter\s+(table|database)\b`),
		regexp.MustCompile(`\bupdate\s+\w+\s+set\b`),
		regexp.MustCompile(`\b(grant|revoke)\b`),
		regexp.MustCompile(`\.updatemany\(`),
	},
}

var levelWeight = map[Level]int{
	Caution:     1,
	Destructive: 3,
}

// Assess 根据用户消息与AI回复判断是否涉及破坏性语句。
func Assess(userMessage, reply string) Assessment {
	normalized := strings.ToLower(userMessage)

	out := Assessment{Level: None, Warned: strings.Contains(reply, persona.DangerMarker)}
	if strings.TrimSpace(normalized) == "" {
		return out
	}

	for _, level := range []Level{Destructive, Caution} {
		for _, re := range statementBuckets[level] {
			matches := re.FindAllString(normalized, -1)
			if len(matches) == 0 {
				continue
			}
			out.Score += levelWeight[level] * len(matches)
			out.Statements = append(out.Statements, matches...)
			if out.Level == None || (out.Level == Caution && level == Destructive) {
				out.Level = level
			}
		}
	}
	return out
}
