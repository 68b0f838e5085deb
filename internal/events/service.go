package events

import (
	"errors"
	"log"
	"os"
	"strconv"

	"event_manager/internal/models"
	"event_manager/internal/storage"

	"gorm.io/gorm"
)

type EventCreateRequest struct {
	Name       string  `json:"name" binding:"required"`
	LocationID uint    `json:"location_id" binding:"required"`
	MaxPlaces  int     `json:"max_places"`
	Date       string  `json:"date" binding:"required"`
	Cost       float64 `json:"cost" binding:"required"`
	Duration   int     `json:"duration" binding:"required"`
}

type EventUpdateRequest struct {
	Name       string  `json:"name" binding:"required"`
	LocationID uint    `json:"location_id" binding:"required"`
	MaxPlaces  int     `json:"max_places"`
	Date       string  `json:"date" binding:"required"`
	Cost       float64 `json:"cost" binding:"required"`
	Duration   int     `json:"duration" binding:"required"`
}

// PageFilter — параметры постраничного вывода. Нулевой размер страницы
// заменяется значением по умолчанию из .env.
type PageFilter struct {
	PageSize   int `form:"page_size"`
	PageNumber int `form:"page_number"`
}

func (p PageFilter) limitOffset() (int, int) {
	size := p.PageSize
	if size <= 0 {
		size = envInt("DEFAULT_PAGE_SIZE", 10)
	}
	number := p.PageNumber
	if number < 0 {
		number = 0
	}
	return size, number * size
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// GetEventByID возвращает событие по идентификатору.
func GetEventByID(eventID uint) (*models.Event, error) {
	var event models.Event
	if err := storage.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// CreateEvent создаёт событие в статусе WAIT_START с нулём занятых мест.
func CreateEvent(ownerID uint, req EventCreateRequest) (*models.Event, error) {
	if err := ValidateEventFields(req.Name, req.MaxPlaces, req.Date, req.Cost, req.Duration); err != nil {
		return nil, err
	}

	var owner models.User
	if err := storage.DB.First(&owner, ownerID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var location models.Location
	if err := storage.DB.First(&location, req.LocationID).Error; err != nil {
		return nil, ErrLocationNotFound
	}
	if location.Capacity < req.MaxPlaces {
		return nil, ErrPlacesCount
	}

	event := models.Event{
		Name:           req.Name,
		OwnerID:        ownerID,
		LocationID:     req.LocationID,
		MaxPlaces:      req.MaxPlaces,
		OccupiedPlaces: 0,
		Date:           req.Date,
		Cost:           req.Cost,
		Duration:       req.Duration,
		Status:         models.EventStatusWaitStart,
	}
	if err := storage.DB.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent обновляет событие. Разрешено владельцу или администратору.
// Новое значение maxPlaces не может быть меньше уже занятых мест, а
// вместимость (возможно новой) площадки — меньше maxPlaces.
func UpdateEvent(userID, eventID uint, req EventUpdateRequest) (*models.Event, error) {
	if err := ValidateEventFields(req.Name, req.MaxPlaces, req.Date, req.Cost, req.Duration); err != nil {
		return nil, err
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	event, err := GetEventByID(eventID)
	if err != nil {
		return nil, err
	}

	if user.Role != models.RoleAdmin && event.OwnerID != userID {
		return nil, ErrNotOwner
	}

	var location models.Location
	if err := storage.DB.First(&location, req.LocationID).Error; err != nil {
		return nil, ErrLocationNotFound
	}
	if location.Capacity < req.MaxPlaces {
		return nil, ErrPlacesCount
	}
	if req.MaxPlaces < event.OccupiedPlaces {
		return nil, ErrPlacesCount
	}

	// Пишутся только редактируемые колонки: occupied_places принадлежит
	// леджеру, status — планировщику, и прочитанные выше значения к моменту
	// записи могли устареть. Условие в WHERE повторяет проверку занятых мест
	// уже по актуальному значению счётчика.
	res := storage.DB.Model(&models.Event{}).
		Where("id = ? AND occupied_places <= ?", eventID, req.MaxPlaces).
		Updates(map[string]interface{}{
			"name":        req.Name,
			"location_id": req.LocationID,
			"max_places":  req.MaxPlaces,
			"date":        req.Date,
			"cost":        req.Cost,
			"duration":    req.Duration,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPlacesCount
	}
	return GetEventByID(eventID)
}

// DeleteEvent отменяет событие. Разрешено владельцу или администратору и
// только до начала события. Статус, активные записи и счётчик мест меняются
// одной транзакцией.
func DeleteEvent(userID, eventID uint) error {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return ErrUserNotFound
	}

	event, err := GetEventByID(eventID)
	if err != nil {
		return err
	}

	if user.Role != models.RoleAdmin && event.OwnerID != userID {
		return ErrNotOwner
	}
	if event.Status != models.EventStatusWaitStart {
		return ErrEventNotWaitStart
	}

	return storage.DB.Transaction(func(tx *gorm.DB) error {
		// Условный переход защищает от гонки с планировщиком: если событие
		// уже успело стартовать, ни одна строка не изменится.
		res := tx.Model(&models.Event{}).
			Where("id = ? AND status = ?", eventID, models.EventStatusWaitStart).
			Update("status", models.EventStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEventNotWaitStart
		}
		if _, err := CancelActiveRegistrations(tx, eventID); err != nil {
			return err
		}
		return ResetOccupiedPlaces(tx, eventID)
	})
}

// checkEventStillWaitStart перечитывает статус события внутри транзакции
// регистрации. Предварительная проверка статуса выполняется до транзакции и
// может разойтись с действительностью, если планировщик успел перевести
// событие дальше; здесь инкремент уже взял блокировку строки события, и
// статус больше не поменяется до фиксации.
func checkEventStillWaitStart(tx *gorm.DB, eventID uint) error {
	var event models.Event
	if err := tx.Select("status").First(&event, eventID).Error; err != nil {
		return err
	}
	switch event.Status {
	case models.EventStatusWaitStart:
		return nil
	case models.EventStatusStarted:
		return ErrEventStarted
	default:
		return ErrEventTerminal
	}
}

// RegisterOnEvent записывает пользователя на событие.
// Место резервируется условным инкрементом счётчика до перевода записи в
// ACTIVE: именно отказ инкремента, а не предварительное чтение, защищает от
// овербукинга.
func RegisterOnEvent(userID, eventID uint) (*models.Event, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	event, err := GetEventByID(eventID)
	if err != nil {
		return nil, err
	}

	if event.OwnerID == userID {
		return nil, ErrOwnerIsMember
	}
	switch event.Status {
	case models.EventStatusWaitStart:
	case models.EventStatusStarted:
		return nil, ErrEventStarted
	default:
		return nil, ErrEventTerminal
	}

	var reg models.Registration
	regErr := storage.DB.Where("user_id = ? AND event_id = ?", userID, eventID).First(&reg).Error
	if regErr != nil && !errors.Is(regErr, gorm.ErrRecordNotFound) {
		return nil, regErr
	}

	if regErr == nil {
		if reg.Status == models.RegistrationStatusActive {
			return nil, ErrAlreadyRegistered
		}
		// Повторная регистрация: строка переиспользуется, место занимается
		// заново на общих основаниях.
		err = storage.DB.Transaction(func(tx *gorm.DB) error {
			ok, err := IncOccupiedPlaces(tx, eventID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrPlacesOverflow
			}
			if err := checkEventStillWaitStart(tx, eventID); err != nil {
				return err
			}
			ok, err = SetRegistrationStatus(tx, userID, eventID, reg.Status, models.RegistrationStatusActive)
			if err != nil {
				return err
			}
			if !ok {
				// Статус записи сменился конкурентно, откат вернёт место.
				return ErrAlreadyRegistered
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return GetEventByID(eventID)
	}

	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := IncOccupiedPlaces(tx, eventID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPlacesOverflow
		}
		if err := checkEventStillWaitStart(tx, eventID); err != nil {
			return err
		}
		newReg := models.Registration{
			UserID:  userID,
			EventID: eventID,
			Status:  models.RegistrationStatusActive,
		}
		if err := tx.Create(&newReg).Error; err != nil {
			// Конкурентная вставка по той же паре (user, event): уникальный
			// индекс сообщает об этом отличимо от "не найдено".
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetEventByID(eventID)
}

// CancelRegistration отменяет активную запись пользователя на событие.
// Доступно только до начала события.
func CancelRegistration(userID, eventID uint) error {
	event, err := GetEventByID(eventID)
	if err != nil {
		return err
	}
	if event.Status != models.EventStatusWaitStart {
		return ErrEventNotWaitStart
	}

	var reg models.Registration
	if err := storage.DB.Where("user_id = ? AND event_id = ?", userID, eventID).First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	if reg.Status != models.RegistrationStatusActive {
		// Строка есть, но отменять нечего: это другая ошибка, чем отсутствие
		// записи вовсе.
		return ErrRegistrationNotActive
	}

	return storage.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := DecOccupiedPlaces(tx, eventID)
		if err != nil {
			return err
		}
		if !ok {
			// При активной записи счётчик не может быть нулевым. Отказ
			// декремента означает рассинхронизацию, о ней надо кричать.
			log.Printf("Нарушение инварианта занятых мест: событие %d, пользователь %d", eventID, userID)
			return ErrPlacesUnderflow
		}
		ok, err = SetRegistrationStatus(tx, userID, eventID, models.RegistrationStatusActive, models.RegistrationStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			// Статус записи сменился конкурентно, откат вернёт место.
			return ErrRegistrationNotActive
		}
		return nil
	})
}

// FindCreatedByUser возвращает события, созданные пользователем.
func FindCreatedByUser(userID uint, page PageFilter) ([]models.Event, error) {
	limit, offset := page.limitOffset()
	var list []models.Event
	err := storage.DB.
		Where("owner_id = ?", userID).
		Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// FindBookedByUser возвращает события, на которые у пользователя есть
// активная запись.
func FindBookedByUser(userID uint, page PageFilter) ([]models.Event, error) {
	limit, offset := page.limitOffset()
	var list []models.Event
	err := storage.DB.
		Joins("JOIN registrations ON registrations.event_id = events.id").
		Where("registrations.user_id = ? AND registrations.status = ?", userID, models.RegistrationStatusActive).
		Order("events.id ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// SearchWithFilter ищет события по необязательным условиям фильтра.
func SearchWithFilter(filter SearchFilter, page PageFilter) ([]models.Event, error) {
	if err := ValidateSearchFilter(filter); err != nil {
		return nil, err
	}

	q := storage.DB.Model(&models.Event{})
	if filter.Name != nil {
		q = q.Where("name = ?", *filter.Name)
	}
	if filter.PlacesMin != nil {
		q = q.Where("max_places >= ?", *filter.PlacesMin)
	}
	if filter.PlacesMax != nil {
		q = q.Where("max_places <= ?", *filter.PlacesMax)
	}
	if filter.DateStartAfter != nil {
		q = q.Where("date >= ?", *filter.DateStartAfter)
	}
	if filter.DateStartBefore != nil {
		q = q.Where("date <= ?", *filter.DateStartBefore)
	}
	if filter.CostMin != nil {
		q = q.Where("cost >= ?", *filter.CostMin)
	}
	if filter.CostMax != nil {
		q = q.Where("cost <= ?", *filter.CostMax)
	}
	if filter.DurationMin != nil {
		q = q.Where("duration >= ?", *filter.DurationMin)
	}
	if filter.DurationMax != nil {
		q = q.Where("duration <= ?", *filter.DurationMax)
	}
	if filter.LocationID != nil {
		q = q.Where("location_id = ?", *filter.LocationID)
	}
	if filter.EventStatus != nil {
		q = q.Where("status = ?", *filter.EventStatus)
	}

	limit, offset := page.limitOffset()
	var list []models.Event
	err := q.Order("id ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
