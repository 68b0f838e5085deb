package models

import (
	"gorm.io/gorm"
)

// Роли пользователей
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Статусы жизненного цикла события
const (
	EventStatusWaitStart = "WAIT_START"
	EventStatusStarted   = "STARTED"
	EventStatusFinished  = "FINISHED"
	EventStatusCancelled = "CANCELLED"
)

// Статусы записи на событие
const (
	RegistrationStatusActive    = "ACTIVE"
	RegistrationStatusCancelled = "CANCELLED"
	RegistrationStatusFinished  = "FINISHED"
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Surname      string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:USER"` // USER или ADMIN
}

type Location struct {
	gorm.Model
	Name        string `gorm:"not null"` // Название площадки
	Address     string `gorm:"not null"`
	Capacity    int    `gorm:"not null"` // Вместимость площадки (минимум 5)
	Description string `gorm:"not null"`
}

type Event struct {
	gorm.Model
	Name           string  `gorm:"not null"`
	OwnerID        uint    `gorm:"index;not null"` // Создатель события
	LocationID     uint    `gorm:"index;not null"`
	MaxPlaces      int     `gorm:"not null"` // Лимит мест на событии
	OccupiedPlaces int     `gorm:"not null;default:0"`
	Date           string  `gorm:"not null"` // Начало события в формате 2006-01-02T15:04:05
	Cost           float64 `gorm:"not null"`
	Duration       int     `gorm:"not null"`       // Длительность в минутах (минимум 30)
	Status         string  `gorm:"index;not null"` // WAIT_START, STARTED, FINISHED, CANCELLED
}

// Registration — запись пользователя на событие.
// На пару (user_id, event_id) существует не больше одной строки:
// при повторной регистрации после отмены переиспользуется старая.
type Registration struct {
	gorm.Model
	UserID  uint   `gorm:"not null;uniqueIndex:uk_registrations_user_event"`
	EventID uint   `gorm:"not null;uniqueIndex:uk_registrations_user_event"`
	Status  string `gorm:"index;not null"` // ACTIVE, CANCELLED, FINISHED
}
