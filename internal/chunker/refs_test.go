package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRef(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		inherited string
		want      string
	}{
		{
			name:    "article declaration",
			content: "ARTÍCULO 12. Definiciones generales.",
			want:    "Artículo 12",
		},
		{
			name:    "article with ordinal sign",
			content: "Artículo 3°.- Ámbito de aplicación.",
			want:    "Artículo 3",
		},
		{
			name:    "article without accent",
			content: "ARTICULO 7: Sanciones.",
			want:    "Artículo 7",
		},
		{
			name:      "inherited unchanged",
			content:   "El plazo será de treinta días hábiles.",
			inherited: "Artículo 5",
			want:      "Artículo 5",
		},
		{
			name:      "numbered paragrafo refines",
			content:   "PARÁGRAFO 2. Lo anterior no aplica cuando...",
			inherited: "Artículo 5",
			want:      "Artículo 5, Parágrafo 2",
		},
		{
			name:      "unnumbered paragrafo refines",
			content:   "Parágrafo. En todo caso se requiere autorización.",
			inherited: "Artículo 5",
			want:      "Artículo 5, Parágrafo",
		},
		{
			name:      "transitory paragrafo",
			content:   "PARÁGRAFO TRANSITORIO. Mientras se expide la reglamentación...",
			inherited: "Artículo 9",
			want:      "Artículo 9, Parágrafo Transitorio",
		},
		{
			name:      "numbered transitory paragrafo",
			content:   "Parágrafo transitorio 1. Régimen de transición.",
			inherited: "Artículo 9",
			want:      "Artículo 9, Parágrafo Transitorio 1",
		},
		{
			name:      "new paragrafo replaces previous suffix",
			content:   "PARÁGRAFO 3. Otra condición.",
			inherited: "Artículo 5, Parágrafo 2",
			want:      "Artículo 5, Parágrafo 3",
		},
		{
			name:    "article and paragrafo in same piece",
			content: "ARTÍCULO 8. Requisitos.\nPARÁGRAFO 1. Excepciones.",
			want:    "Artículo 8, Parágrafo 1",
		},
		{
			name:      "paragrafo without article is dropped",
			content:   "PARÁGRAFO 1. Sin artículo previo.",
			inherited: "",
			want:      "",
		},
		{
			name:      "cross reference mid sentence ignored",
			content:   "Según lo dispuesto, el artículo 99 no altera la referencia.",
			inherited: "Artículo 4",
			want:      "Artículo 4",
		},
		{
			name:      "parenthesized reference ignored",
			content:   "(ver ARTÍCULO 50)\nEl resto del texto continúa.",
			inherited: "Artículo 4",
			want:      "Artículo 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRef(tt.content, tt.inherited))
		})
	}
}
