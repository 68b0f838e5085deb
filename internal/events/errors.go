package events

import "errors"

// Доменные ошибки сервиса событий. Хендлеры превращают их в коды API.
var (
	ErrEventNotFound        = errors.New("событие не найдено")
	ErrLocationNotFound     = errors.New("площадка не найдена")
	ErrUserNotFound         = errors.New("пользователь не найден")
	ErrRegistrationNotFound = errors.New("запись на событие не найдена")

	// ErrRegistrationNotActive — запись существует, но уже отменена или завершена.
	ErrRegistrationNotActive = errors.New("запись на событие не активна")

	// ErrAlreadyRegistered — у пользователя уже есть активная запись на событие.
	ErrAlreadyRegistered = errors.New("пользователь уже зарегистрирован на это событие")

	// ErrOwnerIsMember — создатель события считается участником по умолчанию.
	ErrOwnerIsMember = errors.New("создатель события является участником по умолчанию")

	// ErrEventStarted — регистрация на уже начавшееся событие запрещена.
	ErrEventStarted = errors.New("событие уже началось")

	// ErrEventTerminal — событие завершено или отменено.
	ErrEventTerminal = errors.New("событие уже завершено или отменено")

	// ErrEventNotWaitStart — действие допустимо только до начала события.
	ErrEventNotWaitStart = errors.New("действие недоступно: событие уже началось, завершено или отменено")

	// ErrPlacesOverflow — условный инкремент счётчика мест отказал: свободных мест нет.
	ErrPlacesOverflow = errors.New("свободные места на событии закончились")

	// ErrPlacesUnderflow — условный декремент отказал, хотя активная запись есть.
	// Сигнал нарушения инварианта занятых мест, не штатная ситуация.
	ErrPlacesUnderflow = errors.New("счётчик занятых мест не может стать отрицательным")

	// ErrPlacesCount — maxPlaces не согласован с вместимостью площадки или занятыми местами.
	ErrPlacesCount = errors.New("недопустимое количество мест")

	// ErrNotOwner — пользователь не владелец события и не администратор.
	ErrNotOwner = errors.New("вы не являетесь владельцем этого события")

	// ErrValidation — ошибка валидации входных данных, детали в обёртке.
	ErrValidation = errors.New("ошибка валидации данных")
)
