package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ResetTokenTTL - окно действия токена сброса пароля
const ResetTokenTTL = 15 * time.Minute

// GenerateResetToken генерирует криптографически случайный
// одноразовый токен: 256 бит в hex
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
