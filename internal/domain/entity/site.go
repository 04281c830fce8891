package entity

import "strings"

// CentralWarehouseName nombre del registro centinela que representa la bodega misma.
const CentralWarehouseName = "Bodega Central"

// Site representa una obra (centro de costo) que recibe despachos.
type Site struct {
	ID     int64
	Name   string
	Client string
	Budget int64
}

// IsCentralWarehouse indica si la obra es la Bodega Central, por id configurado o por nombre.
func (s *Site) IsCentralWarehouse(centralID int64) bool {
	if s == nil {
		return false
	}
	return s.ID == centralID || strings.EqualFold(strings.TrimSpace(s.Name), CentralWarehouseName)
}
