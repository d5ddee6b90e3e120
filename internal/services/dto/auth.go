package dto

import "dentwork_backend/internal/models"

// RegisterJobSeekerRequest - регистрация соискателя
type RegisterJobSeekerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterEmployerRequest - регистрация клиники-работодателя
type RegisterEmployerRequest struct {
	ClinicName  string   `json:"clinic_name" binding:"required"`
	Specialties []string `json:"specialties,omitempty"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=8"`
}

// RegisterAdminRequest - создание администратора существующим админом.
// Self-service регистрации для админов нет.
type RegisterAdminRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest - запрос входа (роль определяется эндпоинтом
// либо автоматически при унифицированном логине)
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest - смена пароля аутентифицированным пользователем
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// PasswordResetRequest - запрос сброса пароля (только jobSeeker и employer)
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required" validate:"is-resettable-role"`
}

// PasswordResetConfirm - подтверждение сброса пароля по токену
type PasswordResetConfirm struct {
	Token       string `json:"token" binding:"required"`
	Role        string `json:"role" binding:"required" validate:"is-resettable-role"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// AuthResponse - ответ регистрации и логина.
// Role заполняется при логине и отражает раздел, в котором аккаунт
// реально аутентифицирован (для админа - его сохраненная метка).
type AuthResponse struct {
	Role  string         `json:"role,omitempty"`
	User  models.Account `json:"user"`
	Token string         `json:"token"`
}
