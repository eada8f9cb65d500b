package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Coração", "coracao"},
		{"  Caixa Econômica  ", "caixa economica"},
		{"DEPRECIAÇÃO Acumulada", "depreciacao acumulada"},
		{"não-circulante", "nao-circulante"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Receita de Serviços", "servico"))
	assert.True(t, Contains("Banco", "BAN"))
	assert.False(t, Contains("Banco", "caixa"))
}
