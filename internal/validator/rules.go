package validator

import (
	"log"

	"dentwork_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные правила валидации.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Ошибка регистрации правила - ошибка времени запуска,
			// приложение с ней стартовать не должно
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-account-role': строка является одной из трех ролей аккаунтов
	mustRegister("is-account-role", validateAccountRole)

	// 'is-resettable-role': роль, которой доступен self-service сброс пароля
	mustRegister("is-resettable-role", validateResettableRole)
}

func validateAccountRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые значения проверяет 'required'
	}
	_, ok := models.ParseRole(value)
	return ok
}

func validateResettableRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	role, ok := models.ParseRole(value)
	// Админ исключен из self-service сброса
	return ok && role != models.RoleAdmin
}
