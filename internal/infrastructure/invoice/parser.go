// Package invoice extrae líneas de factura de documentos de proveedor (UBL 2.1 o texto plano).
// No persiste nada: el resultado se revisa en el cliente antes de enviarlo a /ingreso-masivo.
package invoice

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/domain"
)

var _ inventory.InvoiceParser = (*Parser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// maxTextLine largo máximo de una línea de factura en texto plano.
const maxTextLine = 1 << 20

// lineRe: "<cant> [x] <descripción> [<SKU>] $<precio unit> [$<total>]".
var lineRe = regexp.MustCompile(`^\s*(\d+)\s*(?:[xX×]\s*)?(.+?)\s*(?:\[([\w\-./]+)\])?\s+\$\s*([\d.,]+)(?:\s+\$\s*[\d.,]+)?\s*$`)

// Parser implementación de inventory.InvoiceParser.
type Parser struct{}

// NewParser construye el parser.
func NewParser() *Parser { return &Parser{} }

// Parse detecta el formato por extensión y contenido. Las filas mal formadas se omiten.
func (p *Parser) Parse(filename string, content []byte) ([]inventory.LineItem, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: archivo vacío", domain.ErrInvalidInput)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".pdf" || bytes.HasPrefix(trimmed, []byte("%PDF")):
		return nil, fmt.Errorf("%w: formato PDF no soportado, suba el XML o el texto extraído", domain.ErrInvalidInput)
	case ext == ".xml" || trimmed[0] == '<':
		return parseUBL(trimmed)
	default:
		return parseText(content)
	}
}

// parseUBL lee cada cac:InvoiceLine de una factura electrónica UBL 2.1.
func parseUBL(content []byte) ([]inventory.LineItem, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, fmt.Errorf("%w: XML inválido: %v", domain.ErrInvalidInput, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: documento sin raíz", domain.ErrInvalidInput)
	}

	items := make([]inventory.LineItem, 0)
	for _, line := range root.FindElements("//InvoiceLine") {
		qty, ok := xmlAmount(line.FindElement("InvoicedQuantity"))
		if !ok || qty <= 0 {
			continue
		}
		name := childText(line, "Item/Description")
		if name == "" {
			name = childText(line, "Item/Name")
		}
		if name == "" {
			continue
		}
		cost, ok := xmlAmount(line.FindElement("Price/PriceAmount"))
		if !ok || cost < 0 {
			continue
		}
		items = append(items, inventory.LineItem{
			Name:     name,
			SKU:      childText(line, "Item/SellersItemIdentification/ID"),
			Quantity: qty,
			UnitCost: cost,
		})
	}
	return items, nil
}

func childText(e *etree.Element, path string) string {
	if c := e.FindElement(path); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

// xmlAmount UBL usa punto decimal; se trunca a unidades enteras.
func xmlAmount(e *etree.Element) (int64, bool) {
	if e == nil {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(e.Text()))
	if err != nil {
		return 0, false
	}
	return d.IntPart(), true
}

// parseText procesa texto plano (CSV simple, OCR). Si no es UTF-8 válido se asume Windows-1252.
func parseText(content []byte) ([]inventory.LineItem, error) {
	if !utf8.Valid(content) {
		if decoded, err := charmap.Windows1252.NewDecoder().Bytes(content); err == nil {
			content = decoded
		}
	}
	items := make([]inventory.LineItem, 0)
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), maxTextLine)
	for sc.Scan() {
		m := lineRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		qty, ok := parseAmount(m[1])
		if !ok || qty <= 0 {
			continue
		}
		cost, ok := parseAmount(m[4])
		if !ok {
			continue
		}
		name := strings.TrimSpace(m[2])
		if name == "" {
			continue
		}
		items = append(items, inventory.LineItem{Name: name, SKU: m[3], Quantity: qty, UnitCost: cost})
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: línea de más de %d bytes", domain.ErrInvalidInput, maxTextLine)
		}
		return nil, fmt.Errorf("leer factura: %w", err)
	}
	return items, nil
}

// parseAmount interpreta montos locales: "1.200", "1,200", "1.200,50", "1,200.50", "12,5".
// Un único separador seguido de exactamente tres dígitos es de miles. Los decimales se truncan.
func parseAmount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	decimalSep := byte(0)
	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalSep = '.'
		if lastComma > lastDot {
			decimalSep = ','
		}
	case lastDot >= 0 || lastComma >= 0:
		sep := byte('.')
		idx := lastDot
		if lastComma >= 0 {
			sep, idx = ',', lastComma
		}
		if strings.Count(s, string(sep)) == 1 && len(s)-idx-1 != 3 {
			decimalSep = sep
		}
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == decimalSep:
			b.WriteByte('.')
		case c == '.' || c == ',':
		default:
			return 0, false
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return 0, false
	}
	return d.IntPart(), true
}
