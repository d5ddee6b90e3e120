package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role - раздел аккаунтов. Вся диспетчеризация по ролям идет
// через switch по этому типу с явной веткой "неизвестная роль".
type Role string

const (
	RoleJobSeeker Role = "jobSeeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// ParseRole преобразует строку (claims токена, параметр запроса) в Role
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

func (r Role) String() string {
	return string(r)
}

// Account - общий контракт трех разделов аккаунтов.
// Workflow аутентификации написан один раз против этого интерфейса.
type Account interface {
	AccountID() string
	AccountEmail() string
	AccountPasswordHash() string
	AccountRole() Role
	// Deactivated - soft-delete: строка остается в таблице (и участвует
	// в проверке уникальности email), но логин запрещен
	Deactivated() bool
	// Sanitize очищает чувствительные поля перед выдачей наружу
	Sanitize()
}

// JobSeeker - соискатель (стоматолог, ассистент и т.д.)
type JobSeeker struct {
	BaseModel
	FullName      string     `gorm:"not null" json:"full_name"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	IsDeleted     bool       `gorm:"default:false" json:"-"`
	ResetToken    string     `json:"-"`
	ResetTokenExp *time.Time `json:"-"`
}

// Employer - клиника-работодатель
type Employer struct {
	BaseModel
	ClinicName    string         `gorm:"not null" json:"clinic_name"`
	Specialties   datatypes.JSON `json:"specialties,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	IsDeleted     bool           `gorm:"default:false" json:"-"`
	ResetToken    string         `json:"-"`
	ResetTokenExp *time.Time     `json:"-"`
}

// Admin - администратор. Без soft-delete и без self-service сброса
// пароля. RoleLabel - уточненная метка роли, возвращается при
// унифицированном логине.
type Admin struct {
	BaseModel
	FullName     string `json:"full_name,omitempty"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	RoleLabel    string `gorm:"column:role;default:'Admin'" json:"role_label"`
}

// --- JobSeeker: реализация Account ---

func (u *JobSeeker) AccountID() string           { return u.ID }
func (u *JobSeeker) AccountEmail() string        { return u.Email }
func (u *JobSeeker) AccountPasswordHash() string { return u.PasswordHash }
func (u *JobSeeker) AccountRole() Role           { return RoleJobSeeker }
func (u *JobSeeker) Deactivated() bool           { return u.IsDeleted }

func (u *JobSeeker) Sanitize() {
	u.PasswordHash = ""
	u.ResetToken = ""
	u.ResetTokenExp = nil
}

// --- Employer: реализация Account ---

func (e *Employer) AccountID() string           { return e.ID }
func (e *Employer) AccountEmail() string        { return e.Email }
func (e *Employer) AccountPasswordHash() string { return e.PasswordHash }
func (e *Employer) AccountRole() Role           { return RoleEmployer }
func (e *Employer) Deactivated() bool           { return e.IsDeleted }

func (e *Employer) Sanitize() {
	e.PasswordHash = ""
	e.ResetToken = ""
	e.ResetTokenExp = nil
}

// --- Admin: реализация Account ---

func (a *Admin) AccountID() string           { return a.ID }
func (a *Admin) AccountEmail() string        { return a.Email }
func (a *Admin) AccountPasswordHash() string { return a.PasswordHash }
func (a *Admin) AccountRole() Role           { return RoleAdmin }
func (a *Admin) Deactivated() bool           { return false }

func (a *Admin) Sanitize() {
	a.PasswordHash = ""
}

// DisplayRole - метка роли для ответа клиенту: для админа берется
// сохраненная на аккаунте, для остальных совпадает с разделом
func DisplayRole(acc Account) string {
	if admin, ok := acc.(*Admin); ok {
		if admin.RoleLabel != "" {
			return admin.RoleLabel
		}
		return "Admin"
	}
	return acc.AccountRole().String()
}
