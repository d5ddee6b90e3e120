package services

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"dentwork_backend/internal/auth"
	"dentwork_backend/internal/logger"
	"dentwork_backend/internal/models"
	"dentwork_backend/internal/repositories"
	"dentwork_backend/internal/services/dto"
	"dentwork_backend/internal/workers"
	"dentwork_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// unifiedLoginOrder - фиксированный порядок обхода разделов при
// унифицированном логине: первый раздел с совпавшим email выигрывает
var unifiedLoginOrder = []models.Role{
	models.RoleJobSeeker,
	models.RoleEmployer,
	models.RoleAdmin,
}

// MailQueue - очередь отправки писем (реализуется workers.MailWorker)
type MailQueue interface {
	Enqueue(job workers.MailJob) bool
}

type AuthService interface {
	RegisterJobSeeker(req *dto.RegisterJobSeekerRequest) (*dto.AuthResponse, error)
	RegisterEmployer(req *dto.RegisterEmployerRequest) (*dto.AuthResponse, error)
	RegisterAdmin(req *dto.RegisterAdminRequest) (models.Account, error)
	Login(role models.Role, req *dto.LoginRequest) (*dto.AuthResponse, error)
	UnifiedLogin(req *dto.LoginRequest) (*dto.AuthResponse, error)
	CurrentUser(roleTag, accountID string) (models.Account, error)
	ChangePassword(roleTag, accountID string, req *dto.ChangePasswordRequest) error
	RequestPasswordReset(req *dto.PasswordResetRequest) error
	ResetPassword(req *dto.PasswordResetConfirm) error
}

type AuthServiceImpl struct {
	accountRepo repositories.AccountRepository
	tokens      *auth.TokenIssuer
	mailQueue   MailQueue
	baseURL     string
}

func NewAuthService(
	accountRepo repositories.AccountRepository,
	tokens *auth.TokenIssuer,
	mailQueue MailQueue,
	baseURL string,
) AuthService {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		tokens:      tokens,
		mailQueue:   mailQueue,
		baseURL:     baseURL,
	}
}

// RegisterJobSeeker - регистрация соискателя
func (s *AuthServiceImpl) RegisterJobSeeker(req *dto.RegisterJobSeekerRequest) (*dto.AuthResponse, error) {
	if err := s.checkEmailFree(req.Email); err != nil {
		return nil, err
	}

	hash, err := s.hashNewPassword(req.Password)
	if err != nil {
		return nil, err
	}

	seeker := &models.JobSeeker{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: hash,
	}

	// Уникальный индекс на таблице - backstop на случай гонки
	// двух одновременных регистраций, прошедших pre-check
	if err := s.accountRepo.CreateJobSeeker(seeker); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.issueFor(seeker, false)
}

// RegisterEmployer - регистрация клиники
func (s *AuthServiceImpl) RegisterEmployer(req *dto.RegisterEmployerRequest) (*dto.AuthResponse, error) {
	if err := s.checkEmailFree(req.Email); err != nil {
		return nil, err
	}

	hash, err := s.hashNewPassword(req.Password)
	if err != nil {
		return nil, err
	}

	employer := &models.Employer{
		ClinicName:   req.ClinicName,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if len(req.Specialties) > 0 {
		raw, err := json.Marshal(req.Specialties)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		employer.Specialties = datatypes.JSON(raw)
	}

	if err := s.accountRepo.CreateEmployer(employer); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.issueFor(employer, false)
}

// RegisterAdmin - создание администратора.
// Доступно только аутентифицированному админу; токен новому
// аккаунту не выпускается, он логинится сам.
func (s *AuthServiceImpl) RegisterAdmin(req *dto.RegisterAdminRequest) (models.Account, error) {
	if err := s.checkEmailFree(req.Email); err != nil {
		return nil, err
	}

	hash, err := s.hashNewPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		RoleLabel:    "Admin",
	}

	if err := s.accountRepo.CreateAdmin(admin); err != nil {
		return nil, apperrors.InternalError(err)
	}

	admin.Sanitize()
	return admin, nil
}

// Login - вход в раздел, заданный эндпоинтом
func (s *AuthServiceImpl) Login(role models.Role, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	acc, err := s.accountRepo.FindByEmail(role, req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAccountNotFound) || apperrors.Is(err, repositories.ErrUnknownRole) {
			// Единое сообщение для "нет такого email" и "неверный пароль"
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	return s.authenticate(acc, req.Password)
}

// UnifiedLogin - вход без указания роли: разделы пробуются в
// фиксированном порядке jobSeeker -> employer -> admin
func (s *AuthServiceImpl) UnifiedLogin(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	for _, role := range unifiedLoginOrder {
		acc, err := s.accountRepo.FindByEmail(role, req.Email)
		if err != nil {
			if apperrors.Is(err, repositories.ErrAccountNotFound) {
				continue
			}
			return nil, apperrors.InternalError(err)
		}
		// Первый раздел с этим email: дальше обычные проверки,
		// в другие разделы не заглядываем
		return s.authenticate(acc, req.Password)
	}

	return nil, apperrors.ErrInvalidCredentials
}

// CurrentUser - профиль аутентифицированного пользователя по claims токена
func (s *AuthServiceImpl) CurrentUser(roleTag, accountID string) (models.Account, error) {
	// Защита от подделанной/битой роли в claims
	role, ok := models.ParseRole(roleTag)
	if !ok {
		return nil, apperrors.ErrUnknownRole
	}

	acc, err := s.accountRepo.FindByID(role, accountID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAccountNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		if apperrors.Is(err, repositories.ErrUnknownRole) {
			return nil, apperrors.ErrUnknownRole
		}
		return nil, apperrors.InternalError(err)
	}

	acc.Sanitize()
	return acc, nil
}

// ChangePassword - смена пароля при известном текущем.
// Ротации токена не происходит.
func (s *AuthServiceImpl) ChangePassword(roleTag, accountID string, req *dto.ChangePasswordRequest) error {
	role, ok := models.ParseRole(roleTag)
	if !ok {
		return apperrors.ErrUnknownRole
	}

	acc, err := s.accountRepo.FindByID(role, accountID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAccountNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, acc.AccountPasswordHash()) {
		return apperrors.ErrWrongPassword
	}

	hash, err := s.hashNewPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.accountRepo.UpdatePasswordHash(acc, hash); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// RequestPasswordReset - запрос сброса пароля.
// Ответ успешен, как только токен сохранен; судьба письма на ответ
// не влияет (отправка уходит в фоновую очередь с ретраями).
func (s *AuthServiceImpl) RequestPasswordReset(req *dto.PasswordResetRequest) error {
	role, err := parseResettableRole(req.Role)
	if err != nil {
		return err
	}

	acc, err := s.accountRepo.FindByEmail(role, req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAccountNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return apperrors.InternalError(err)
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return apperrors.InternalError(err)
	}

	expiry := time.Now().Add(auth.ResetTokenTTL)
	if err := s.accountRepo.SetResetToken(acc, token, expiry); err != nil {
		return apperrors.InternalError(err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s&role=%s",
		s.baseURL, url.QueryEscape(token), url.QueryEscape(role.String()))

	if s.mailQueue != nil {
		queued := s.mailQueue.Enqueue(workers.MailJob{
			To:       acc.AccountEmail(),
			ResetURL: resetURL,
		})
		if !queued {
			// Токен уже сохранен, запрос не проваливаем
			logger.Warn("mail queue is full, reset email dropped", "email", acc.AccountEmail())
		}
	}

	return nil
}

// ResetPassword - сброс пароля по одноразовому токену
func (s *AuthServiceImpl) ResetPassword(req *dto.PasswordResetConfirm) error {
	role, err := parseResettableRole(req.Role)
	if err != nil {
		return err
	}

	// Совпадение токена и не истекший срок проверяются одним запросом:
	// наружу не видно, был токен неверным или просроченным
	acc, err := s.accountRepo.FindByResetToken(role, req.Token, time.Now())
	if err != nil {
		if apperrors.Is(err, repositories.ErrAccountNotFound) || apperrors.Is(err, repositories.ErrUnknownRole) {
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.InternalError(err)
	}

	hash, err := s.hashNewPassword(req.NewPassword)
	if err != nil {
		return err
	}

	// Новый хеш и обнуление токена - атомарно: токен одноразовый
	if err := s.accountRepo.ConsumeResetToken(acc, hash); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// --- Helper functions ---

// checkEmailFree проверяет занятость email по объединению всех трех разделов
func (s *AuthServiceImpl) checkEmailFree(email string) error {
	exists, err := s.accountRepo.EmailExists(email)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if exists {
		return apperrors.ErrEmailAlreadyExists
	}
	return nil
}

func (s *AuthServiceImpl) hashNewPassword(password string) (string, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return "", apperrors.ErrWeakPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return hash, nil
}

// authenticate применяет общие проверки логина и выпускает токен
func (s *AuthServiceImpl) authenticate(acc models.Account, password string) (*dto.AuthResponse, error) {
	// Soft-deleted аккаунт не логинится; сообщение то же,
	// что и при неверном пароле (админ всегда активен)
	if acc.Deactivated() {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPasswordHash(password, acc.AccountPasswordHash()) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueFor(acc, true)
}

// issueFor выпускает токен и строит ответ. Роль в токене - всегда
// раздел, в котором аккаунт реально найден
func (s *AuthServiceImpl) issueFor(acc models.Account, withRole bool) (*dto.AuthResponse, error) {
	token, err := s.tokens.Generate(acc.AccountID(), acc.AccountEmail(), acc.AccountRole())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	acc.Sanitize()

	resp := &dto.AuthResponse{
		User:  acc,
		Token: token,
	}
	if withRole {
		resp.Role = models.DisplayRole(acc)
	}
	return resp, nil
}

func parseResettableRole(roleTag string) (models.Role, error) {
	role, ok := models.ParseRole(roleTag)
	if !ok || role == models.RoleAdmin {
		return "", apperrors.NewBadRequestError("Password reset is not available for this role")
	}
	return role, nil
}
