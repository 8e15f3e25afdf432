package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "Built APIs in Go", "Built APIs in Go"},
		{"ampersand", "R&D", `R\&D`},
		{"percent", "cut latency 40%", `cut latency 40\%`},
		{"dollar and hash", "$2M budget, #1 team", `\$2M budget, \#1 team`},
		{"underscore", "snake_case", `snake\_case`},
		{"braces", "{x}", `\{x\}`},
		{"backslash", `C:\path`, `C:\textbackslash{}path`},
		{"caret and tilde", "x^2 ~ y", `x\textasciicircum{}2 \textasciitilde{} y`},
		{"unicode untouched", "Zürich · Café", "Zürich · Café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLaTeX(tt.in))
		})
	}
}

func TestEscapeLaTeX_OutputIsBalanced(t *testing.T) {
	assert.NoError(t, CheckBalanced(EscapeLaTeX("a { b } c \\ d ^ e ~ f")))
}
