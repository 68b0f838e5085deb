package tasks

import (
	"log"
	"os"
	"time"

	"event_manager/internal/events"
	"event_manager/internal/models"
	"event_manager/internal/storage"
	"event_manager/internal/ws"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// SweepSummary — счётчики одного прохода сверки статусов.
type SweepSummary struct {
	Started               int
	Finished              int
	FinishedRegistrations int64
	Skipped               int
	Checked               int
}

// UpdateEventStatuses — один проход сверки статусов событий с текущим
// временем. Запускается по расписанию, но может быть вызван и напрямую
// (например, из тестов).
//
// Терминальные события (FINISHED, CANCELLED) не пересматриваются. События с
// нечитаемой датой или нулевой длительностью пропускаются до следующего
// прохода: дожимать их в FINISHED по умолчанию нельзя.
func UpdateEventStatuses() SweepSummary {
	now := time.Now()
	var sum SweepSummary

	var eventsToCheck []models.Event
	if err := storage.DB.
		Where("status IN ?", []string{models.EventStatusWaitStart, models.EventStatusStarted}).
		Find(&eventsToCheck).Error; err != nil {
		log.Println("Ошибка загрузки событий для сверки статусов:", err)
		return sum
	}
	sum.Checked = len(eventsToCheck)

	var finishedIDs []uint

	for _, event := range eventsToCheck {
		start, err := time.Parse(events.DateLayout, event.Date)
		if err != nil {
			sum.Skipped++
			log.Printf("Пропуск события id=%d: нечитаемая дата '%s'", event.ID, event.Date)
			continue
		}
		if event.Duration <= 0 {
			sum.Skipped++
			log.Printf("Пропуск события id=%d: нулевая длительность", event.ID)
			continue
		}
		end := start.Add(time.Duration(event.Duration) * time.Minute)

		if event.Status == models.EventStatusWaitStart {
			if !now.Before(end) {
				// Всё окно события прошло до того, как оно было замечено
				// стартовавшим: сразу FINISHED.
				finishedIDs = append(finishedIDs, event.ID)
				continue
			}
			if !now.Before(start) {
				res := storage.DB.Model(&models.Event{}).
					Where("id = ? AND status = ?", event.ID, models.EventStatusWaitStart).
					Update("status", models.EventStatusStarted)
				if res.Error != nil {
					log.Println("Ошибка перевода события в STARTED:", res.Error)
					continue
				}
				if res.RowsAffected > 0 {
					sum.Started++
					ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
						EventType: "event_started",
						EventID:   event.ID,
					})
				}
			}
			continue
		}

		if !now.Before(end) {
			finishedIDs = append(finishedIDs, event.ID)
		}
	}

	// Каскад завершения: статус события, активные записи и счётчик мест
	// меняются одной транзакцией. Счётчик обнуляется безусловно, чтобы
	// каскад нельзя было "проскочить" параллельным инкрементом.
	// В счётчики прохода и в рассылку событие попадает только после того,
	// как условный переход в FINISHED действительно затронул строку.
	for _, eventID := range finishedIDs {
		var finishedRegs int64
		flipped := false
		err := storage.DB.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Event{}).
				Where("id = ? AND status IN ?", eventID,
					[]string{models.EventStatusWaitStart, models.EventStatusStarted}).
				Update("status", models.EventStatusFinished)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Событие успели отменить, каскад не нужен.
				return nil
			}
			flipped = true
			n, err := events.FinishActiveRegistrations(tx, eventID)
			if err != nil {
				return err
			}
			finishedRegs = n
			return events.ResetOccupiedPlaces(tx, eventID)
		})
		if err != nil {
			log.Println("Ошибка каскада завершения события:", err)
			continue
		}
		if !flipped {
			continue
		}
		sum.Finished++
		sum.FinishedRegistrations += finishedRegs
		ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
			EventType: "event_finished",
			EventID:   eventID,
		})
	}

	if sum.Started > 0 || sum.Finished > 0 || sum.FinishedRegistrations > 0 || sum.Skipped > 0 {
		log.Printf("Сверка статусов: STARTED=%d, FINISHED=%d, завершено записей=%d, пропущено=%d, проверено=%d",
			sum.Started, sum.Finished, sum.FinishedRegistrations, sum.Skipped, sum.Checked)
	}
	return sum
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	spec := os.Getenv("SCHEDULER_CRON")
	if spec == "" {
		// Каждую минуту
		spec = "0 * * * * *"
	}

	_, err := c.AddFunc(spec, func() { UpdateEventStatuses() })
	if err != nil {
		log.Println("Ошибка запуска cron-задачи UpdateEventStatuses:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
