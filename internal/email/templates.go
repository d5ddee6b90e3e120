package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Встроенные шаблоны писем
var defaultTemplates = map[string]string{
	"password_reset": `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; background: #f4f6f8; padding: 24px;">
  <div style="max-width: 520px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
    <h2 style="color: #1a73a8; margin-top: 0;">Сброс пароля</h2>
    <p>Мы получили запрос на сброс пароля вашего аккаунта DentWork.</p>
    <p>Чтобы задать новый пароль, нажмите на кнопку ниже. Ссылка действует 15 минут.</p>
    <p style="text-align: center; margin: 28px 0;">
      <a href="{{.ResetURL}}"
         style="background: #1a73a8; color: #ffffff; padding: 12px 28px; border-radius: 6px; text-decoration: none;">
        Сбросить пароль
      </a>
    </p>
    <p style="color: #6a7680; font-size: 13px;">
      Если вы не запрашивали сброс пароля, просто проигнорируйте это письмо -
      ваш пароль останется прежним.
    </p>
  </div>
</body>
</html>`,
}

// TemplateRenderer рендерит html-шаблоны писем
type TemplateRenderer struct {
	templates map[string]*template.Template
}

func NewTemplateRenderer() *TemplateRenderer {
	r := &TemplateRenderer{
		templates: make(map[string]*template.Template),
	}
	for name, text := range defaultTemplates {
		// Шаблоны встроены в бинарь, ошибка парсинга - ошибка программиста
		r.templates[name] = template.Must(template.New(name).Parse(text))
	}
	return r
}

// Render рендерит шаблон с данными
func (r *TemplateRenderer) Render(name string, data TemplateData) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
