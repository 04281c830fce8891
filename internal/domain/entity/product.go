package entity

// Categorías por defecto.
const (
	DefaultCategory = "General"
	ImportCategory  = "Importación"
)

// Product representa un material del catálogo.
// CurrentStock es un contador desnormalizado: solo el ledger de movimientos lo modifica.
type Product struct {
	ID           int64
	Name         string
	SKU          string // único
	Category     string
	UnitCost     int64 // unidades enteras de moneda
	UnitPrice    int64 // no usado por el ledger
	CurrentStock int64 // puede ser negativo (discrepancia contable)
	LastSupplier *string
}
