package tasks

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"event_manager/internal/events"
	"event_manager/internal/models"
	"event_manager/internal/storage"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		if err := godotenv.Load("../../.env"); err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectTestingDatabase()

	if err := storage.DB.AutoMigrate(&models.User{}, &models.Location{}, &models.Event{}, &models.Registration{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.DB.Exec("TRUNCATE TABLE users, locations, events, registrations RESTART IDENTITY CASCADE;")
}

func createSweepFixtures(t *testing.T) (uint, uint) {
	owner := models.User{Name: "Владелец", Surname: "Тестовый", Email: fmt.Sprintf("owner_%d@example.com", time.Now().UnixNano()), PasswordHash: "hashed123", Role: models.RoleUser}
	assert.NoError(t, storage.DB.Create(&owner).Error)

	location := models.Location{Name: "Площадка", Address: "ул. Тестовая, 1", Capacity: 50, Description: "Площадка для тестов планировщика"}
	assert.NoError(t, storage.DB.Create(&location).Error)

	return owner.ID, location.ID
}

func createSweepEvent(t *testing.T, ownerID, locationID uint, date string, duration int, status string) *models.Event {
	event := models.Event{
		Name:       "Событие планировщика",
		OwnerID:    ownerID,
		LocationID: locationID,
		MaxPlaces:  10,
		Date:       date,
		Cost:       300,
		Duration:   duration,
		Status:     status,
	}
	assert.NoError(t, storage.DB.Create(&event).Error)
	return &event
}

func createActiveRegistration(t *testing.T, eventID uint) *models.User {
	user := models.User{Name: "Участник", Surname: "Тестовый", Email: fmt.Sprintf("member_%d@example.com", time.Now().UnixNano()), PasswordHash: "hashed123", Role: models.RoleUser}
	assert.NoError(t, storage.DB.Create(&user).Error)

	reg := models.Registration{UserID: user.ID, EventID: eventID, Status: models.RegistrationStatusActive}
	assert.NoError(t, storage.DB.Create(&reg).Error)
	assert.NoError(t, storage.DB.Model(&models.Event{}).Where("id = ?", eventID).
		UpdateColumn("occupied_places", gorm.Expr("occupied_places + 1")).Error)
	return &user
}

func reloadEvent(t *testing.T, eventID uint) *models.Event {
	var event models.Event
	assert.NoError(t, storage.DB.First(&event, eventID).Error)
	return &event
}

// Событие, чьё окно уже прошло, завершается одним проходом: статус FINISHED,
// активные записи FINISHED, счётчик мест обнулён.
func TestSweepFinishesElapsedEvent(t *testing.T) {
	setupTestDB(t)
	ownerID, locationID := createSweepFixtures(t)

	// Начало 10 минут назад, длительность 5 минут: окно целиком в прошлом.
	start := time.Now().Add(-10 * time.Minute).Format(events.DateLayout)
	event := createSweepEvent(t, ownerID, locationID, start, 5, models.EventStatusWaitStart)
	createActiveRegistration(t, event.ID)
	createActiveRegistration(t, event.ID)

	assert.Equal(t, 2, reloadEvent(t, event.ID).OccupiedPlaces)

	sum := UpdateEventStatuses()
	assert.Equal(t, 1, sum.Finished)
	assert.Equal(t, int64(2), sum.FinishedRegistrations)
	assert.Equal(t, 1, sum.Checked)

	final := reloadEvent(t, event.ID)
	assert.Equal(t, models.EventStatusFinished, final.Status)
	assert.Equal(t, 0, final.OccupiedPlaces)

	var regs []models.Registration
	assert.NoError(t, storage.DB.Where("event_id = ?", event.ID).Find(&regs).Error)
	assert.Len(t, regs, 2)
	for _, reg := range regs {
		assert.Equal(t, models.RegistrationStatusFinished, reg.Status)
	}
}

// Событие, которое должно идти прямо сейчас, переводится в STARTED без
// побочных эффектов для записей.
func TestSweepStartsEvent(t *testing.T) {
	setupTestDB(t)
	ownerID, locationID := createSweepFixtures(t)

	start := time.Now().Add(-5 * time.Minute).Format(events.DateLayout)
	event := createSweepEvent(t, ownerID, locationID, start, 60, models.EventStatusWaitStart)
	createActiveRegistration(t, event.ID)

	sum := UpdateEventStatuses()
	assert.Equal(t, 1, sum.Started)
	assert.Equal(t, 0, sum.Finished)

	final := reloadEvent(t, event.ID)
	assert.Equal(t, models.EventStatusStarted, final.Status)
	assert.Equal(t, 1, final.OccupiedPlaces)

	var reg models.Registration
	assert.NoError(t, storage.DB.Where("event_id = ?", event.ID).First(&reg).Error)
	assert.Equal(t, models.RegistrationStatusActive, reg.Status)
}

// Событие с будущим началом остаётся в WAIT_START.
func TestSweepLeavesFutureEvent(t *testing.T) {
	setupTestDB(t)
	ownerID, locationID := createSweepFixtures(t)

	start := time.Now().Add(5 * time.Minute).Format(events.DateLayout)
	event := createSweepEvent(t, ownerID, locationID, start, 30, models.EventStatusWaitStart)

	UpdateEventStatuses()

	assert.Equal(t, models.EventStatusWaitStart, reloadEvent(t, event.ID).Status)
}

// Начавшееся событие завершается, когда его окно истекло.
func TestSweepFinishesStartedEvent(t *testing.T) {
	setupTestDB(t)
	ownerID, locationID := createSweepFixtures(t)

	start := time.Now().Add(-90 * time.Minute).Format(events.DateLayout)
	event := createSweepEvent(t, ownerID, locationID, start, 60, models.EventStatusStarted)
	createActiveRegistration(t, event.ID)

	UpdateEventStatuses()

	final := reloadEvent(t, event.ID)
	assert.Equal(t, models.EventStatusFinished, final.Status)
	assert.Equal(t, 0, final.OccupiedPlaces)
}

// Нечитаемая дата и нулевая длительность не переводят событие в FINISHED:
// такие строки пропускаются до следующего прохода.
func TestSweepSkipsMalformedEvents(t *testing.T) {
	setupTestDB(t)
	ownerID, locationID := createSweepFixtures(t)

	badDate := createSweepEvent(t, ownerID, locationID, "не дата", 60, models.EventStatusWaitStart)
	zeroDuration := createSweepEvent(t, ownerID, locationID,
		time.Now().Add(-10*time.Minute).Format(events.DateLayout), 0, models.EventStatusWaitStart)

	sum := UpdateEventStatuses()
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 0, sum.Finished)

	assert.Equal(t, models.EventStatusWaitStart, reloadEvent(t, badDate.ID).Status)
	assert.Equal(t, models.EventStatusWaitStart, reloadEvent(t, zeroDuration.ID).Status)
}

// Терминальные события планировщик не трогает.
func TestSweepIgnoresTerminalEvents(t *testing.T) {
	setupTestDB(t)
	ownerID, locationID := createSweepFixtures(t)

	start := time.Now().Add(-10 * time.Minute).Format(events.DateLayout)
	cancelled := createSweepEvent(t, ownerID, locationID, start, 5, models.EventStatusCancelled)
	finished := createSweepEvent(t, ownerID, locationID, start, 5, models.EventStatusFinished)

	sum := UpdateEventStatuses()
	assert.Equal(t, 0, sum.Checked)

	assert.Equal(t, models.EventStatusCancelled, reloadEvent(t, cancelled.ID).Status)
	assert.Equal(t, models.EventStatusFinished, reloadEvent(t, finished.ID).Status)
}

// Событие, отменённое между выборкой и каскадом завершения, не попадает в
// счётчики прохода: завершение засчитывается только когда условный переход в
// FINISHED действительно изменил строку.
func TestSweepDoesNotCountConcurrentlyCancelledEvent(t *testing.T) {
	setupTestDB(t)
	ownerID, locationID := createSweepFixtures(t)

	start := time.Now().Add(-10 * time.Minute).Format(events.DateLayout)
	event := createSweepEvent(t, ownerID, locationID, start, 5, models.EventStatusWaitStart)
	createActiveRegistration(t, event.ID)

	// Сразу после выборки событий владелец успевает отменить событие.
	injected := false
	assert.NoError(t, storage.DB.Callback().Query().After("gorm:query").
		Register("cancel_between_load_and_cascade", func(db *gorm.DB) {
			if injected || db.Statement.Table != "events" {
				return
			}
			injected = true
			assert.NoError(t, storage.DB.Model(&models.Event{}).Where("id = ?", event.ID).
				Update("status", models.EventStatusCancelled).Error)
			_, err := events.CancelActiveRegistrations(storage.DB, event.ID)
			assert.NoError(t, err)
			assert.NoError(t, events.ResetOccupiedPlaces(storage.DB, event.ID))
		}))
	defer storage.DB.Callback().Query().Remove("cancel_between_load_and_cascade")

	sum := UpdateEventStatuses()
	assert.Equal(t, 0, sum.Finished)
	assert.Equal(t, int64(0), sum.FinishedRegistrations)

	final := reloadEvent(t, event.ID)
	assert.Equal(t, models.EventStatusCancelled, final.Status)
	assert.Equal(t, 0, final.OccupiedPlaces)

	var reg models.Registration
	assert.NoError(t, storage.DB.Where("event_id = ?", event.ID).First(&reg).Error)
	assert.Equal(t, models.RegistrationStatusCancelled, reg.Status)
}
