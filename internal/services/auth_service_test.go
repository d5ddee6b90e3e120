package services_test

import (
	"strings"
	"testing"
	"time"

	"dentwork_backend/internal/auth"
	"dentwork_backend/internal/models"
	"dentwork_backend/internal/repositories"
	"dentwork_backend/internal/services"
	"dentwork_backend/internal/services/dto"
	"dentwork_backend/internal/workers"
	"dentwork_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailQueue struct {
	jobs []workers.MailJob
}

func (q *fakeMailQueue) Enqueue(job workers.MailJob) bool {
	q.jobs = append(q.jobs, job)
	return true
}

func newTestService(t *testing.T) (services.AuthService, *repositories.InMemoryAccountRepository, *fakeMailQueue) {
	t.Helper()
	repo := repositories.NewInMemoryAccountRepository()
	queue := &fakeMailQueue{}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := services.NewAuthService(repo, tokens, queue, "https://dentwork.kz")
	return svc, repo, queue
}

// createJobSeeker кладет соискателя напрямую в репозиторий,
// минуя кросс-партиционную проверку email
func createJobSeeker(t *testing.T, repo *repositories.InMemoryAccountRepository, email, password string, deleted bool) *models.JobSeeker {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	u := &models.JobSeeker{
		FullName:     "Test Seeker",
		Email:        email,
		PasswordHash: hash,
		IsDeleted:    deleted,
	}
	require.NoError(t, repo.CreateJobSeeker(u))
	return u
}

func createEmployer(t *testing.T, repo *repositories.InMemoryAccountRepository, email, password string, deleted bool) *models.Employer {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	e := &models.Employer{
		ClinicName:   "Test Clinic",
		Email:        email,
		PasswordHash: hash,
		IsDeleted:    deleted,
	}
	require.NoError(t, repo.CreateEmployer(e))
	return e
}

func createAdmin(t *testing.T, repo *repositories.InMemoryAccountRepository, email, password, label string) *models.Admin {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	a := &models.Admin{
		Email:        email,
		PasswordHash: hash,
		RoleLabel:    label,
	}
	require.NoError(t, repo.CreateAdmin(a))
	return a
}

func TestRegisterJobSeeker_Success(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.RegisterJobSeeker(&dto.RegisterJobSeekerRequest{
		FullName: "Aigerim S.",
		Email:    "a@x.com",
		Password: "password1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "a@x.com", resp.User.AccountEmail())
	// Хеш пароля не утекает в ответ
	assert.Empty(t, resp.User.AccountPasswordHash())
}

func TestRegister_DuplicateEmailAcrossPartitions(t *testing.T) {
	svc, repo, _ := newTestService(t)

	createJobSeeker(t, repo, "taken@x.com", "password1", false)

	// Тот же email в ДРУГОМ разделе тоже занят
	_, err := svc.RegisterEmployer(&dto.RegisterEmployerRequest{
		ClinicName: "Clinic",
		Email:      "taken@x.com",
		Password:   "password1",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	// И наоборот: email работодателя блокирует регистрацию соискателя
	createEmployer(t, repo, "clinic@x.com", "password1", false)
	_, err = svc.RegisterJobSeeker(&dto.RegisterJobSeekerRequest{
		FullName: "Seeker",
		Email:    "clinic@x.com",
		Password: "password1",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	// Email админа - тоже
	createAdmin(t, repo, "admin@x.com", "password1", "Admin")
	_, err = svc.RegisterJobSeeker(&dto.RegisterJobSeekerRequest{
		FullName: "Seeker",
		Email:    "admin@x.com",
		Password: "password1",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestRegisterAdmin(t *testing.T) {
	svc, repo, _ := newTestService(t)

	acc, err := svc.RegisterAdmin(&dto.RegisterAdminRequest{
		FullName: "Second Admin",
		Email:    "second@x.com",
		Password: "admin-pass2",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, acc.AccountRole())
	assert.Empty(t, acc.AccountPasswordHash())

	// Созданный админ может залогиниться
	resp, err := svc.Login(models.RoleAdmin, &dto.LoginRequest{
		Email: "second@x.com", Password: "admin-pass2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Admin", resp.Role)

	// Email, занятый в другом разделе, блокирует создание
	createJobSeeker(t, repo, "seeker@x.com", "password1", false)
	_, err = svc.RegisterAdmin(&dto.RegisterAdminRequest{
		Email: "seeker@x.com", Password: "admin-pass2",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RegisterJobSeeker(&dto.RegisterJobSeekerRequest{
		FullName: "Seeker",
		Email:    "weak@x.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
}

func TestLogin_GenericUnauthorizedMessage(t *testing.T) {
	svc, repo, _ := newTestService(t)
	createJobSeeker(t, repo, "user@x.com", "correct-pass", false)

	// Неизвестный email и неверный пароль дают ОДНУ И ТУ ЖЕ ошибку
	_, errUnknown := svc.Login(models.RoleJobSeeker, &dto.LoginRequest{
		Email: "nobody@x.com", Password: "correct-pass",
	})
	_, errWrongPass := svc.Login(models.RoleJobSeeker, &dto.LoginRequest{
		Email: "user@x.com", Password: "WRONG",
	})

	assert.ErrorIs(t, errUnknown, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, apperrors.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

func TestLogin_Success(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seeker := createJobSeeker(t, repo, "user@x.com", "correct-pass", false)

	resp, err := svc.Login(models.RoleJobSeeker, &dto.LoginRequest{
		Email: "user@x.com", Password: "correct-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, "jobSeeker", resp.Role)
	assert.Equal(t, seeker.ID, resp.User.AccountID())
	assert.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.AccountPasswordHash())
}

func TestLogin_SoftDeletedRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)
	createJobSeeker(t, repo, "gone@x.com", "correct-pass", true)
	createEmployer(t, repo, "closed@x.com", "correct-pass", true)

	// Даже с верным паролем - и с тем же generic сообщением
	_, err := svc.Login(models.RoleJobSeeker, &dto.LoginRequest{
		Email: "gone@x.com", Password: "correct-pass",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(models.RoleEmployer, &dto.LoginRequest{
		Email: "closed@x.com", Password: "correct-pass",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUnifiedLogin_PartitionPriority(t *testing.T) {
	svc, repo, _ := newTestService(t)

	// Один email во всех трех разделах (инвариант уникальности такое
	// запрещает, но порядок разрешения обязан быть детерминированным)
	createJobSeeker(t, repo, "same@x.com", "seeker-pass", false)
	createEmployer(t, repo, "same@x.com", "employer-pass", false)
	createAdmin(t, repo, "same@x.com", "admin-pass", "Admin")

	// jobSeeker выигрывает: логин проходит только его паролем
	resp, err := svc.UnifiedLogin(&dto.LoginRequest{Email: "same@x.com", Password: "seeker-pass"})
	require.NoError(t, err)
	assert.Equal(t, "jobSeeker", resp.Role)

	// Пароль работодателя не подходит: до его раздела дело не доходит
	_, err = svc.UnifiedLogin(&dto.LoginRequest{Email: "same@x.com", Password: "employer-pass"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUnifiedLogin_ResolvesEachPartition(t *testing.T) {
	svc, repo, _ := newTestService(t)
	createJobSeeker(t, repo, "seeker@x.com", "password1", false)
	createEmployer(t, repo, "clinic@x.com", "password1", false)
	createAdmin(t, repo, "root@x.com", "password1", "SuperAdmin")

	resp, err := svc.UnifiedLogin(&dto.LoginRequest{Email: "seeker@x.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "jobSeeker", resp.Role)

	resp, err = svc.UnifiedLogin(&dto.LoginRequest{Email: "clinic@x.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "employer", resp.Role)

	// Для админа роль в ответе - его сохраненная метка
	resp, err = svc.UnifiedLogin(&dto.LoginRequest{Email: "root@x.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "SuperAdmin", resp.Role)

	_, err = svc.UnifiedLogin(&dto.LoginRequest{Email: "nobody@x.com", Password: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestCurrentUser(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seeker := createJobSeeker(t, repo, "me@x.com", "password1", false)

	acc, err := svc.CurrentUser("jobSeeker", seeker.ID)
	require.NoError(t, err)
	assert.Equal(t, seeker.ID, acc.AccountID())
	assert.Empty(t, acc.AccountPasswordHash())

	// Строка исчезла
	_, err = svc.CurrentUser("jobSeeker", "missing-id")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	// Подделанная роль в claims
	_, err = svc.CurrentUser("superuser", seeker.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnknownRole)
}

func TestChangePassword(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seeker := createJobSeeker(t, repo, "me@x.com", "old-password", false)

	// Неверный текущий пароль
	err := svc.ChangePassword("jobSeeker", seeker.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "WRONG",
		NewPassword:     "new-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrWrongPassword)

	// Успешная смена
	err = svc.ChangePassword("jobSeeker", seeker.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	})
	require.NoError(t, err)

	// Старый пароль больше не работает, новый - работает
	_, err = svc.Login(models.RoleJobSeeker, &dto.LoginRequest{Email: "me@x.com", Password: "old-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(models.RoleJobSeeker, &dto.LoginRequest{Email: "me@x.com", Password: "new-password"})
	assert.NoError(t, err)

	// Исчезнувший аккаунт
	err = svc.ChangePassword("jobSeeker", "missing-id", &dto.ChangePasswordRequest{
		CurrentPassword: "x", NewPassword: "new-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestRequestPasswordReset(t *testing.T) {
	svc, repo, queue := newTestService(t)
	createJobSeeker(t, repo, "me@x.com", "password1", false)

	// Неизвестный email
	err := svc.RequestPasswordReset(&dto.PasswordResetRequest{Email: "nobody@x.com", Role: "jobSeeker"})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	// Админу self-service сброс недоступен
	err = svc.RequestPasswordReset(&dto.PasswordResetRequest{Email: "me@x.com", Role: "admin"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPCode)

	// Успех: токен сохранен, письмо поставлено в очередь
	err = svc.RequestPasswordReset(&dto.PasswordResetRequest{Email: "me@x.com", Role: "jobSeeker"})
	require.NoError(t, err)

	stored, err := repo.FindByEmail(models.RoleJobSeeker, "me@x.com")
	require.NoError(t, err)
	seeker := stored.(*models.JobSeeker)
	assert.Len(t, seeker.ResetToken, 64)
	require.NotNil(t, seeker.ResetTokenExp)
	assert.WithinDuration(t, time.Now().Add(auth.ResetTokenTTL), *seeker.ResetTokenExp, 5*time.Second)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "me@x.com", queue.jobs[0].To)
	assert.True(t, strings.HasPrefix(queue.jobs[0].ResetURL, "https://dentwork.kz/reset-password?token="))
	assert.Contains(t, queue.jobs[0].ResetURL, seeker.ResetToken)
	assert.Contains(t, queue.jobs[0].ResetURL, "role=jobSeeker")
}

func TestResetPassword_WindowAndSingleUse(t *testing.T) {
	svc, repo, queue := newTestService(t)
	createJobSeeker(t, repo, "me@x.com", "old-password", false)

	require.NoError(t, svc.RequestPasswordReset(&dto.PasswordResetRequest{Email: "me@x.com", Role: "jobSeeker"}))
	require.Len(t, queue.jobs, 1)

	stored, err := repo.FindByEmail(models.RoleJobSeeker, "me@x.com")
	require.NoError(t, err)
	token := stored.(*models.JobSeeker).ResetToken

	// Неверный токен - тот же generic ответ
	err = svc.ResetPassword(&dto.PasswordResetConfirm{
		Token: "deadbeef", Role: "jobSeeker", NewPassword: "new-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)

	// Верный токен работает
	err = svc.ResetPassword(&dto.PasswordResetConfirm{
		Token: token, Role: "jobSeeker", NewPassword: "new-password",
	})
	require.NoError(t, err)

	// Токен одноразовый: повторное использование проваливается
	err = svc.ResetPassword(&dto.PasswordResetConfirm{
		Token: token, Role: "jobSeeker", NewPassword: "another-pass",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)

	// Пароль реально заменен
	_, err = svc.Login(models.RoleJobSeeker, &dto.LoginRequest{Email: "me@x.com", Password: "old-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(models.RoleJobSeeker, &dto.LoginRequest{Email: "me@x.com", Password: "new-password"})
	assert.NoError(t, err)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seeker := createJobSeeker(t, repo, "me@x.com", "old-password", false)

	// Токен с истекшим сроком прямо в хранилище
	require.NoError(t, repo.SetResetToken(seeker, "expired-token", time.Now().Add(-time.Minute)))

	err := svc.ResetPassword(&dto.PasswordResetConfirm{
		Token: "expired-token", Role: "jobSeeker", NewPassword: "new-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
}

// TestAuthFlow_EndToEnd - сквозной сценарий уровня сервиса
func TestAuthFlow_EndToEnd(t *testing.T) {
	svc, repo, queue := newTestService(t)

	// Регистрация
	regResp, err := svc.RegisterJobSeeker(&dto.RegisterJobSeekerRequest{
		FullName: "A", Email: "a@x.com", Password: "pw1pw1pw1",
	})
	require.NoError(t, err)
	accountID := regResp.User.AccountID()
	assert.NotEmpty(t, regResp.Token)

	// Логин верным паролем - тот же аккаунт
	loginResp, err := svc.UnifiedLogin(&dto.LoginRequest{Email: "a@x.com", Password: "pw1pw1pw1"})
	require.NoError(t, err)
	assert.Equal(t, accountID, loginResp.User.AccountID())

	// Логин неверным паролем
	_, err = svc.UnifiedLogin(&dto.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Запрос сброса: токен сохранен, письмо поставлено в очередь
	require.NoError(t, svc.RequestPasswordReset(&dto.PasswordResetRequest{Email: "a@x.com", Role: "jobSeeker"}))
	require.Len(t, queue.jobs, 1)

	stored, err := repo.FindByEmail(models.RoleJobSeeker, "a@x.com")
	require.NoError(t, err)
	token := stored.(*models.JobSeeker).ResetToken

	// Сброс на новый пароль
	require.NoError(t, svc.ResetPassword(&dto.PasswordResetConfirm{
		Token: token, Role: "jobSeeker", NewPassword: "pw2pw2pw2",
	}))

	// Старый пароль - 401, новый - 200
	_, err = svc.UnifiedLogin(&dto.LoginRequest{Email: "a@x.com", Password: "pw1pw1pw1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	loginResp, err = svc.UnifiedLogin(&dto.LoginRequest{Email: "a@x.com", Password: "pw2pw2pw2"})
	require.NoError(t, err)
	assert.Equal(t, accountID, loginResp.User.AccountID())
}
