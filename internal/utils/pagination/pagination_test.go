package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPages(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		limit int
		want  int64
	}{
		{"exact multiple", 100, 20, 5},
		{"with remainder", 101, 20, 6},
		{"less than one page", 5, 20, 1},
		{"empty", 0, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Pagination{Limit: tt.limit, Total: tt.total}
			assert.Equal(t, tt.want, p.Pages())
		})
	}
}

func TestEnvelope(t *testing.T) {
	p := Pagination{Page: 2, Limit: 20, Total: 45}
	env := p.Envelope()

	assert.Equal(t, 2, env["page"])
	assert.Equal(t, 20, env["limit"])
	assert.Equal(t, int64(45), env["total"])
	assert.Equal(t, int64(3), env["pages"])
}
