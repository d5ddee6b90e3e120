package email

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет email сообщение
	Send(email *Email) error

	// SendPasswordReset отправляет письмо со ссылкой для сброса пароля
	SendPasswordReset(to, resetURL string) error

	// Verify проверяет соединение с SMTP сервером
	Verify() error

	// Close закрывает соединение с провайдером
	Close() error
}
