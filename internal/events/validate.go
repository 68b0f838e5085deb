package events

import (
	"fmt"
	"time"
)

// DateLayout — формат хранения даты начала события.
const DateLayout = "2006-01-02T15:04:05"

// ValidateEventFields проверяет поля события перед созданием или обновлением.
// Возвращает ErrValidation с указанием поля.
func ValidateEventFields(name string, maxPlaces int, date string, cost float64, duration int) error {
	if name == "" || len(name) > 50 {
		return fmt.Errorf("%w: name: длина названия от 1 до 50 символов", ErrValidation)
	}
	if maxPlaces < 0 {
		return fmt.Errorf("%w: maxPlaces: количество мест не может быть отрицательным", ErrValidation)
	}
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Errorf("%w: date: ожидается формат %s", ErrValidation, DateLayout)
	}
	if parsed.Before(time.Now()) {
		return fmt.Errorf("%w: date: дата начала не может быть в прошлом", ErrValidation)
	}
	if cost <= 0 {
		return fmt.Errorf("%w: cost: стоимость должна быть больше нуля", ErrValidation)
	}
	if duration < 30 {
		return fmt.Errorf("%w: duration: минимальная длительность 30 минут", ErrValidation)
	}
	return nil
}

// ValidateLocationFields проверяет поля площадки.
func ValidateLocationFields(name, address string, capacity int, description string) error {
	if name == "" || len(name) > 40 {
		return fmt.Errorf("%w: name: длина названия от 1 до 40 символов", ErrValidation)
	}
	if len(address) < 5 || len(address) > 100 {
		return fmt.Errorf("%w: address: длина адреса от 5 до 100 символов", ErrValidation)
	}
	if capacity < 5 {
		return fmt.Errorf("%w: capacity: минимальная вместимость площадки 5", ErrValidation)
	}
	if len(description) < 10 || len(description) > 100 {
		return fmt.Errorf("%w: description: длина описания от 10 до 100 символов", ErrValidation)
	}
	return nil
}

// SearchFilter — необязательные условия поиска событий. nil означает
// отсутствие условия.
type SearchFilter struct {
	Name            *string  `json:"name"`
	PlacesMin       *int     `json:"placesMin"`
	PlacesMax       *int     `json:"placesMax"`
	DateStartAfter  *string  `json:"dateStartAfter"`
	DateStartBefore *string  `json:"dateStartBefore"`
	CostMin         *float64 `json:"costMin"`
	CostMax         *float64 `json:"costMax"`
	DurationMin     *int     `json:"durationMin"`
	DurationMax     *int     `json:"durationMax"`
	LocationID      *uint    `json:"locationId"`
	EventStatus     *string  `json:"eventStatus"`
}

// ValidateSearchFilter проверяет согласованность диапазонов фильтра.
func ValidateSearchFilter(f SearchFilter) error {
	if f.PlacesMin != nil && f.PlacesMax != nil && *f.PlacesMin > *f.PlacesMax {
		return fmt.Errorf("%w: placesMin не может быть больше placesMax", ErrValidation)
	}
	if f.DurationMin != nil && f.DurationMax != nil && *f.DurationMin > *f.DurationMax {
		return fmt.Errorf("%w: durationMin не может быть больше durationMax", ErrValidation)
	}
	if f.CostMin != nil && f.CostMax != nil && *f.CostMin > *f.CostMax {
		return fmt.Errorf("%w: costMin не может быть больше costMax", ErrValidation)
	}
	if f.DateStartAfter != nil && f.DateStartBefore != nil && *f.DateStartAfter > *f.DateStartBefore {
		return fmt.Errorf("%w: dateStartAfter не может быть позже dateStartBefore", ErrValidation)
	}
	return nil
}
