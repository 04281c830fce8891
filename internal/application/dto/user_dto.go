package dto

// LoginRequest credenciales.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse respuesta de POST /login. es_admin es solo informativo para la interfaz.
type LoginResponse struct {
	Success bool   `json:"success"`
	Nombre  string `json:"nombre,omitempty"`
	Email   string `json:"email,omitempty"`
	EsAdmin bool   `json:"es_admin"`
	Token   string `json:"token,omitempty"`
	Mensaje string `json:"mensaje,omitempty"`
}
