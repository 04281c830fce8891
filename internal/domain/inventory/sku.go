package inventory

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
)

// SKU automático: <3 primeras letras del nombre en mayúscula>-<número de 4 dígitos>.
const (
	skuFallbackPrefix = "GEN"
	skuPrefixLen      = 3
	skuMin            = 1000
	skuSpan           = 9000 // [1000, 9999]
)

// SKUGenerator genera candidatos de SKU. La fuente aleatoria es inyectable para tests.
type SKUGenerator struct {
	intN func(n int) int
}

// NewSKUGenerator construye el generador. intN nil usa math/rand/v2.
func NewSKUGenerator(intN func(n int) int) *SKUGenerator {
	if intN == nil {
		intN = rand.IntN
	}
	return &SKUGenerator{intN: intN}
}

// Candidate devuelve un SKU candidato para el nombre. No garantiza unicidad.
func (g *SKUGenerator) Candidate(name string) string {
	return fmt.Sprintf("%s-%d", SKUPrefix(name), skuMin+g.intN(skuSpan))
}

// SKUPrefix toma las primeras tres letras o dígitos del nombre en mayúscula; "GEN" si no hay ninguno.
func SKUPrefix(name string) string {
	var b strings.Builder
	n := 0
	for _, r := range name {
		if n == skuPrefixLen {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			n++
		}
	}
	if n == 0 {
		return skuFallbackPrefix
	}
	return b.String()
}
