package apperrors

import (
	"net/http"
)

/*
Предопределенные ошибки домена аутентификации.
Хендлеры и сервисы возвращают их как есть, преобразование
в HTTP-ответ делает единая точка HandleError.
*/

var (
	// ErrEmailAlreadyExists - email занят в одном из разделов аккаунтов
	ErrEmailAlreadyExists = New(CodeAlreadyExists, "auth", "Email already exists", http.StatusBadRequest)

	// ErrInvalidCredentials - единое сообщение для "нет такого email" и "неверный пароль",
	// чтобы не раскрывать, какие email зарегистрированы
	ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid credentials", http.StatusUnauthorized)

	// ErrWrongPassword - неверный текущий пароль при его смене
	ErrWrongPassword = New(CodeInvalidCredentials, "auth", "Current password is incorrect", http.StatusUnauthorized)

	// ErrUnknownRole - нераспознанная роль в claims токена
	ErrUnknownRole = New(CodeUnauthorized, "auth", "Unrecognized account role", http.StatusUnauthorized)

	// ErrAccountNotFound - аутентифицированный аккаунт больше не существует
	ErrAccountNotFound = New(CodeNotFound, "auth", "Account not found", http.StatusNotFound)

	// ErrInvalidResetToken - единый ответ для неверного И истекшего токена сброса
	ErrInvalidResetToken = New(CodeInvalidToken, "auth", "Invalid or expired reset token", http.StatusBadRequest)

	// ErrWeakPassword - пароль не проходит минимальные требования
	ErrWeakPassword = New(CodeValidationFailed, "auth", "Password must be at least 8 characters long", http.StatusBadRequest)
)
