package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obralink/obralink-api/internal/domain/inventory"
)

func TestSKUPrefix(t *testing.T) {
	cases := map[string]string{
		"Taladro":        "TAL",
		"  cemento gris": "CEM",
		"Ñandú 3000":     "ÑAN",
		"A-1 b":          "A1B",
		"":               "GEN",
		"-- ":            "GEN",
	}
	for name, want := range cases {
		assert.Equal(t, want, inventory.SKUPrefix(name), "nombre %q", name)
	}
}

func TestSKUGenerator_CandidateRango(t *testing.T) {
	gen := inventory.NewSKUGenerator(func(n int) int { return 0 })
	assert.Equal(t, "TAL-1000", gen.Candidate("Taladro"))

	gen = inventory.NewSKUGenerator(func(n int) int { return n - 1 })
	assert.Equal(t, "TAL-9999", gen.Candidate("Taladro"))
}

func TestSKUGenerator_FuenteAleatoriaPorDefecto(t *testing.T) {
	gen := inventory.NewSKUGenerator(nil)
	for i := 0; i < 50; i++ {
		sku := gen.Candidate("Cemento")
		assert.Regexp(t, `^CEM-[1-9][0-9]{3}$`, sku)
	}
}
