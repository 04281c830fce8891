package entity

// User usuario del panel. IsAdmin es solo un indicador de presentación.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string // bcrypt
	IsAdmin      bool
}
