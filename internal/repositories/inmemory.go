package repositories

import (
	"errors"
	"sync"
	"time"

	"dentwork_backend/internal/models"

	"github.com/google/uuid"
)

// InMemoryAccountRepository - реализация AccountRepository на картах.
// Используется в тестах и для локального запуска без БД.
// Семантика повторяет SQL-реализацию: soft-deleted строки видимы,
// уникальность email в разделе проверяется на Create.
type InMemoryAccountRepository struct {
	mu         sync.Mutex
	jobSeekers map[string]*models.JobSeeker
	employers  map[string]*models.Employer
	admins     map[string]*models.Admin
}

func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		jobSeekers: make(map[string]*models.JobSeeker),
		employers:  make(map[string]*models.Employer),
		admins:     make(map[string]*models.Admin),
	}
}

func (r *InMemoryAccountRepository) FindByEmail(role models.Role, email string) (models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch role {
	case models.RoleJobSeeker:
		for _, u := range r.jobSeekers {
			if u.Email == email {
				copied := *u
				return &copied, nil
			}
		}
	case models.RoleEmployer:
		for _, e := range r.employers {
			if e.Email == email {
				copied := *e
				return &copied, nil
			}
		}
	case models.RoleAdmin:
		for _, a := range r.admins {
			if a.Email == email {
				copied := *a
				return &copied, nil
			}
		}
	default:
		return nil, ErrUnknownRole
	}
	return nil, ErrAccountNotFound
}

func (r *InMemoryAccountRepository) FindByID(role models.Role, id string) (models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch role {
	case models.RoleJobSeeker:
		if u, ok := r.jobSeekers[id]; ok {
			copied := *u
			return &copied, nil
		}
	case models.RoleEmployer:
		if e, ok := r.employers[id]; ok {
			copied := *e
			return &copied, nil
		}
	case models.RoleAdmin:
		if a, ok := r.admins[id]; ok {
			copied := *a
			return &copied, nil
		}
	default:
		return nil, ErrUnknownRole
	}
	return nil, ErrAccountNotFound
}

func (r *InMemoryAccountRepository) EmailExists(email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emailTaken(email), nil
}

func (r *InMemoryAccountRepository) CreateJobSeeker(u *models.JobSeeker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(u.Email) {
		return errors.New("duplicate key value violates unique constraint")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	copied := *u
	r.jobSeekers[u.ID] = &copied
	return nil
}

func (r *InMemoryAccountRepository) CreateEmployer(e *models.Employer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(e.Email) {
		return errors.New("duplicate key value violates unique constraint")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now()
	copied := *e
	r.employers[e.ID] = &copied
	return nil
}

func (r *InMemoryAccountRepository) CreateAdmin(a *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(a.Email) {
		return errors.New("duplicate key value violates unique constraint")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.RoleLabel == "" {
		a.RoleLabel = "Admin"
	}
	a.CreatedAt = time.Now()
	copied := *a
	r.admins[a.ID] = &copied
	return nil
}

func (r *InMemoryAccountRepository) UpdatePasswordHash(acc models.Account, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch stored := r.lookup(acc).(type) {
	case *models.JobSeeker:
		stored.PasswordHash = hash
		stored.UpdatedAt = time.Now()
	case *models.Employer:
		stored.PasswordHash = hash
		stored.UpdatedAt = time.Now()
	case *models.Admin:
		stored.PasswordHash = hash
		stored.UpdatedAt = time.Now()
	default:
		return ErrAccountNotFound
	}
	return nil
}

func (r *InMemoryAccountRepository) SetResetToken(acc models.Account, token string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	expCopy := exp
	switch stored := r.lookup(acc).(type) {
	case *models.JobSeeker:
		stored.ResetToken = token
		stored.ResetTokenExp = &expCopy
	case *models.Employer:
		stored.ResetToken = token
		stored.ResetTokenExp = &expCopy
	default:
		return ErrAccountNotFound
	}
	return nil
}

func (r *InMemoryAccountRepository) FindByResetToken(role models.Role, token string, now time.Time) (models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token == "" {
		return nil, ErrAccountNotFound
	}

	switch role {
	case models.RoleJobSeeker:
		for _, u := range r.jobSeekers {
			if u.ResetToken == token && u.ResetTokenExp != nil && u.ResetTokenExp.After(now) {
				copied := *u
				return &copied, nil
			}
		}
	case models.RoleEmployer:
		for _, e := range r.employers {
			if e.ResetToken == token && e.ResetTokenExp != nil && e.ResetTokenExp.After(now) {
				copied := *e
				return &copied, nil
			}
		}
	default:
		return nil, ErrUnknownRole
	}
	return nil, ErrAccountNotFound
}

func (r *InMemoryAccountRepository) ConsumeResetToken(acc models.Account, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch stored := r.lookup(acc).(type) {
	case *models.JobSeeker:
		stored.PasswordHash = newHash
		stored.ResetToken = ""
		stored.ResetTokenExp = nil
		stored.UpdatedAt = time.Now()
	case *models.Employer:
		stored.PasswordHash = newHash
		stored.ResetToken = ""
		stored.ResetTokenExp = nil
		stored.UpdatedAt = time.Now()
	default:
		return ErrAccountNotFound
	}
	return nil
}

// --- внутренние помощники (вызывать под мьютексом) ---

func (r *InMemoryAccountRepository) emailTaken(email string) bool {
	for _, u := range r.jobSeekers {
		if u.Email == email {
			return true
		}
	}
	for _, e := range r.employers {
		if e.Email == email {
			return true
		}
	}
	for _, a := range r.admins {
		if a.Email == email {
			return true
		}
	}
	return false
}

// lookup возвращает хранимый экземпляр для переданного аккаунта
// (аргумент может быть копией)
func (r *InMemoryAccountRepository) lookup(acc models.Account) models.Account {
	switch acc.AccountRole() {
	case models.RoleJobSeeker:
		if stored, ok := r.jobSeekers[acc.AccountID()]; ok {
			return stored
		}
	case models.RoleEmployer:
		if stored, ok := r.employers[acc.AccountID()]; ok {
			return stored
		}
	case models.RoleAdmin:
		if stored, ok := r.admins[acc.AccountID()]; ok {
			return stored
		}
	}
	return nil
}
