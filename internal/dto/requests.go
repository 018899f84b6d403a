package dto

// RegisterRequest тело POST /api/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest тело POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Поля multipart формы POST /api/reports/new.
const (
	FormFieldName         = "name"
	FormFieldPhone        = "phone"
	FormFieldAccidentType = "accident_type"
	FormFieldLocation     = "location"
	FormFieldImage        = "image"
)
