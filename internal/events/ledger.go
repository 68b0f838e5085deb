package events

import (
	"event_manager/internal/models"

	"gorm.io/gorm"
)

// Счётчик занятых мест меняется только условными UPDATE-ами.
// Чтение значения в память с последующей записью обратно здесь запрещено:
// два конкурентных запроса увидели бы одно и то же значение и оба прошли бы
// проверку лимита.

// IncOccupiedPlaces увеличивает occupied_places на 1, только если лимит ещё
// не достигнут. Возвращает false, если свободных мест нет.
func IncOccupiedPlaces(db *gorm.DB, eventID uint) (bool, error) {
	res := db.Model(&models.Event{}).
		Where("id = ? AND occupied_places < max_places", eventID).
		UpdateColumn("occupied_places", gorm.Expr("occupied_places + 1"))
	return res.RowsAffected > 0, res.Error
}

// DecOccupiedPlaces уменьшает occupied_places на 1, только если счётчик
// больше нуля. Возвращает false, если уменьшать нечего.
func DecOccupiedPlaces(db *gorm.DB, eventID uint) (bool, error) {
	res := db.Model(&models.Event{}).
		Where("id = ? AND occupied_places > 0", eventID).
		UpdateColumn("occupied_places", gorm.Expr("occupied_places - 1"))
	return res.RowsAffected > 0, res.Error
}

// ResetOccupiedPlaces обнуляет occupied_places. Используется только в каскадах
// терминальных переходов события, где все активные записи переводятся той же
// операцией.
func ResetOccupiedPlaces(db *gorm.DB, eventID uint) error {
	return db.Model(&models.Event{}).
		Where("id = ?", eventID).
		UpdateColumn("occupied_places", 0).Error
}

// SetRegistrationStatus переводит запись (userID, eventID) из статуса from в
// статус to. Ноль затронутых строк означает, что статус успел поменять кто-то
// другой — вызывающий обязан трактовать это как конкурентное изменение.
func SetRegistrationStatus(db *gorm.DB, userID, eventID uint, from, to string) (bool, error) {
	res := db.Model(&models.Registration{}).
		Where("user_id = ? AND event_id = ? AND status = ?", userID, eventID, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

// FinishActiveRegistrations массово переводит активные записи события в
// FINISHED. Возвращает число затронутых записей.
func FinishActiveRegistrations(db *gorm.DB, eventID uint) (int64, error) {
	res := db.Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", eventID, models.RegistrationStatusActive).
		Update("status", models.RegistrationStatusFinished)
	return res.RowsAffected, res.Error
}

// CancelActiveRegistrations массово переводит активные записи события в
// CANCELLED. Используется при удалении события владельцем.
func CancelActiveRegistrations(db *gorm.DB, eventID uint) (int64, error) {
	res := db.Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", eventID, models.RegistrationStatusActive).
		Update("status", models.RegistrationStatusCancelled)
	return res.RowsAffected, res.Error
}
