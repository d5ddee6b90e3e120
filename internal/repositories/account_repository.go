package repositories

import (
	"errors"
	"time"

	"dentwork_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUnknownRole     = errors.New("unknown account role")
)

type AccountRepository interface {
	// Поиск в разделе, выбранном по роли
	FindByEmail(role models.Role, email string) (models.Account, error)
	FindByID(role models.Role, id string) (models.Account, error)

	// EmailExists проверяет занятость email во ВСЕХ трех разделах.
	// Pre-check для регистрации; источником истины остаются
	// уникальные индексы на таблицах.
	EmailExists(email string) (bool, error)

	CreateJobSeeker(u *models.JobSeeker) error
	CreateEmployer(e *models.Employer) error
	CreateAdmin(a *models.Admin) error

	UpdatePasswordHash(acc models.Account, hash string) error

	// SetResetToken сохраняет токен сброса и срок его действия
	SetResetToken(acc models.Account, token string, exp time.Time) error

	// FindByResetToken ищет аккаунт по токену с еще не истекшим сроком.
	// Совпадение токена и проверка срока - одним условием, чтобы не
	// различать "неверный" и "истекший" токен.
	FindByResetToken(role models.Role, token string, now time.Time) (models.Account, error)

	// ConsumeResetToken атомарно записывает новый хеш пароля
	// и обнуляет токен сброса
	ConsumeResetToken(acc models.Account, newHash string) error
}

type AccountRepositoryImpl struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

func (r *AccountRepositoryImpl) FindByEmail(role models.Role, email string) (models.Account, error) {
	switch role {
	case models.RoleJobSeeker:
		var u models.JobSeeker
		return r.first(&u, "email = ?", email)
	case models.RoleEmployer:
		var e models.Employer
		return r.first(&e, "email = ?", email)
	case models.RoleAdmin:
		var a models.Admin
		return r.first(&a, "email = ?", email)
	default:
		return nil, ErrUnknownRole
	}
}

func (r *AccountRepositoryImpl) FindByID(role models.Role, id string) (models.Account, error) {
	switch role {
	case models.RoleJobSeeker:
		var u models.JobSeeker
		return r.first(&u, "id = ?", id)
	case models.RoleEmployer:
		var e models.Employer
		return r.first(&e, "id = ?", id)
	case models.RoleAdmin:
		var a models.Admin
		return r.first(&a, "id = ?", id)
	default:
		return nil, ErrUnknownRole
	}
}

func (r *AccountRepositoryImpl) EmailExists(email string) (bool, error) {
	// Уникальность email - по объединению всех разделов.
	// Soft-deleted строки тоже считаются занятыми.
	for _, model := range []interface{}{
		&models.JobSeeker{},
		&models.Employer{},
		&models.Admin{},
	} {
		var count int64
		if err := r.db.Model(model).Where("email = ?", email).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *AccountRepositoryImpl) CreateJobSeeker(u *models.JobSeeker) error {
	return r.db.Create(u).Error
}

func (r *AccountRepositoryImpl) CreateEmployer(e *models.Employer) error {
	return r.db.Create(e).Error
}

func (r *AccountRepositoryImpl) CreateAdmin(a *models.Admin) error {
	return r.db.Create(a).Error
}

func (r *AccountRepositoryImpl) UpdatePasswordHash(acc models.Account, hash string) error {
	result := r.db.Model(acc).Updates(map[string]interface{}{
		"password_hash": hash,
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepositoryImpl) SetResetToken(acc models.Account, token string, exp time.Time) error {
	result := r.db.Model(acc).Updates(map[string]interface{}{
		"reset_token":     token,
		"reset_token_exp": exp,
		"updated_at":      time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepositoryImpl) FindByResetToken(role models.Role, token string, now time.Time) (models.Account, error) {
	cond := "reset_token = ? AND reset_token_exp IS NOT NULL AND reset_token_exp > ?"
	switch role {
	case models.RoleJobSeeker:
		var u models.JobSeeker
		return r.first(&u, cond, token, now)
	case models.RoleEmployer:
		var e models.Employer
		return r.first(&e, cond, token, now)
	default:
		// Админ исключен из self-service сброса
		return nil, ErrUnknownRole
	}
}

func (r *AccountRepositoryImpl) ConsumeResetToken(acc models.Account, newHash string) error {
	// Новый хеш и обнуление токена - одним UPDATE
	result := r.db.Model(acc).Updates(map[string]interface{}{
		"password_hash":   newHash,
		"reset_token":     "",
		"reset_token_exp": nil,
		"updated_at":      time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// first выполняет First и нормализует ErrRecordNotFound.
// dest обязан реализовывать models.Account.
func (r *AccountRepositoryImpl) first(dest models.Account, cond string, args ...interface{}) (models.Account, error) {
	err := r.db.First(dest, append([]interface{}{cond}, args...)...).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return dest, nil
}
