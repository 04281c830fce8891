package entity

import "time"

// MovementKind tipo de movimiento del ledger.
type MovementKind string

// Tipos de movimiento.
const (
	MovementEntrada MovementKind = "ENTRADA" // ingreso a bodega
	MovementSalida  MovementKind = "SALIDA"  // despacho a obra
)

// Valid indica si el tipo es conocido.
func (k MovementKind) Valid() bool {
	return k == MovementEntrada || k == MovementSalida
}

// Delta devuelve el cambio de stock que produce un movimiento de este tipo.
func (k MovementKind) Delta(quantity int64) int64 {
	if k == MovementSalida {
		return -quantity
	}
	return quantity
}

// Movement es una entrada inmutable del ledger de stock.
// EventAt es la fecha de negocio (puede ser retroactiva); RecordedAt es siempre la hora de inserción.
type Movement struct {
	ID         int64
	ProductID  int64
	Kind       MovementKind
	Quantity   int64 // siempre > 0; el signo lo da Kind
	SiteID     *int64
	EventAt    time.Time
	RecordedAt time.Time
	Supplier   *string
	ReceivedBy *string
}

// MovementDetail movimiento con nombres de producto y obra (historial).
type MovementDetail struct {
	Movement
	ProductName string
	ProductSKU  string
	SiteName    *string
}
