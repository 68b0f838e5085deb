package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"event_manager/internal/events"
	"event_manager/internal/models"
	"event_manager/internal/response"

	"github.com/gin-gonic/gin"
)

// EventResponse — представление события в API.
type EventResponse struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	OwnerID        uint    `json:"owner_id"`
	LocationID     uint    `json:"location_id"`
	MaxPlaces      int     `json:"max_places"`
	OccupiedPlaces int     `json:"occupied_places"`
	Date           string  `json:"date"`
	Cost           float64 `json:"cost"`
	Duration       int     `json:"duration"`
	Status         string  `json:"status"`
}

func toEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:             e.ID,
		Name:           e.Name,
		OwnerID:        e.OwnerID,
		LocationID:     e.LocationID,
		MaxPlaces:      e.MaxPlaces,
		OccupiedPlaces: e.OccupiedPlaces,
		Date:           e.Date,
		Cost:           e.Cost,
		Duration:       e.Duration,
		Status:         e.Status,
	}
}

func toEventResponseList(list []models.Event) []EventResponse {
	result := make([]EventResponse, 0, len(list))
	for i := range list {
		result = append(result, toEventResponse(&list[i]))
	}
	return result
}

// writeDomainError переводит доменную ошибку в код и статус API.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, events.ErrValidation):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
	case errors.Is(err, events.ErrEventNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "EVENT_NOT_FOUND",
			Message: "Событие не найдено",
		})
	case errors.Is(err, events.ErrLocationNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "LOCATION_NOT_FOUND",
			Message: "Площадка не найдена",
		})
	case errors.Is(err, events.ErrUserNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
	case errors.Is(err, events.ErrRegistrationNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "REGISTRATION_NOT_FOUND",
			Message: "Запись на событие не найдена",
		})
	case errors.Is(err, events.ErrRegistrationNotActive):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "REGISTRATION_NOT_ACTIVE",
			Message: "Запись на событие уже отменена или завершена",
		})
	case errors.Is(err, events.ErrAlreadyRegistered):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "ALREADY_REGISTERED",
			Message: "Вы уже зарегистрированы на это событие",
		})
	case errors.Is(err, events.ErrOwnerIsMember):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "OWNER_IS_MEMBER",
			Message: "Создатель события является участником по умолчанию",
		})
	case errors.Is(err, events.ErrEventStarted):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "EVENT_ALREADY_STARTED",
			Message: "Регистрация невозможна: событие уже началось",
		})
	case errors.Is(err, events.ErrEventTerminal):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "EVENT_FINISHED_OR_CANCELLED",
			Message: "Событие уже завершено или отменено",
		})
	case errors.Is(err, events.ErrEventNotWaitStart):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "EVENT_INVALID_STATUS",
			Message: "Действие недоступно: событие уже началось, завершено или отменено",
		})
	case errors.Is(err, events.ErrPlacesOverflow):
		// Отдельный код: клиент может попробовать снова, если кто-то отменится.
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "PLACES_OVERFLOW",
			Message: "Свободные места на событии закончились",
		})
	case errors.Is(err, events.ErrPlacesCount):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "PLACES_COUNT_ERROR",
			Message: "Количество мест не согласовано с вместимостью площадки или занятыми местами",
		})
	case errors.Is(err, events.ErrNotOwner):
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "NOT_OWNER",
			Message: "Вы не являетесь владельцем этого события",
		})
	case errors.Is(err, events.ErrPlacesUnderflow):
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "PLACES_INCONSISTENT",
			Message: "Счётчик занятых мест рассинхронизирован",
			Details: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Внутренняя ошибка сервера",
			Details: err.Error(),
		})
	}
}

func eventIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_EVENT_ID",
			Message: "Неверный идентификатор события",
		})
		return 0, false
	}
	return uint(id), true
}

// CreateEventHandler обрабатывает создание события
// @Summary		Создание события
// @Description	Создаёт событие в статусе WAIT_START
// @Tags			events
// @Accept			json
// @Produce		json
// @Param			event	body		events.EventCreateRequest	true	"Данные события"
// @Security		BearerAuth
// @Success		201	{object}	EventResponse	"Созданное событие"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, PLACES_COUNT_ERROR)"
// @Failure		404	{object}	response.ErrorResponse	"Площадка не найдена (LOCATION_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/events [post]
func CreateEventHandler(c *gin.Context) {
	var req events.EventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	event, err := events.CreateEvent(c.GetUint("userID"), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEventResponse(event))
}

// GetEventHandler возвращает событие по идентификатору
// @Summary		Получение события
// @Tags			events
// @Produce		json
// @Param			id	path		string	true	"ID события"
// @Success		200	{object}	EventResponse	"Событие"
// @Failure		400	{object}	response.ErrorResponse	"Неверный идентификатор (INVALID_EVENT_ID)"
// @Failure		404	{object}	response.ErrorResponse	"Событие не найдено (EVENT_NOT_FOUND)"
// @Router			/api/events/{id} [get]
func GetEventHandler(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	event, err := events.GetEventByID(eventID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponse(event))
}

// UpdateEventHandler обновляет событие
// @Summary		Обновление события
// @Description	Доступно владельцу события или администратору
// @Tags			events
// @Accept			json
// @Produce		json
// @Param			id		path		string						true	"ID события"
// @Param			event	body		events.EventUpdateRequest	true	"Новые данные события"
// @Security		BearerAuth
// @Success		200	{object}	EventResponse	"Обновлённое событие"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, PLACES_COUNT_ERROR)"
// @Failure		403	{object}	response.ErrorResponse	"Нет прав (NOT_OWNER)"
// @Failure		404	{object}	response.ErrorResponse	"Событие или площадка не найдены"
// @Router			/api/events/{id} [put]
func UpdateEventHandler(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req events.EventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	event, err := events.UpdateEvent(c.GetUint("userID"), eventID, req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponse(event))
}

// DeleteEventHandler отменяет событие
// @Summary		Удаление события
// @Description	Отменяет событие до его начала: статус CANCELLED, активные записи отменяются, счётчик мест обнуляется
// @Tags			events
// @Produce		json
// @Param			id	path		string	true	"ID события"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Событие отменено"
// @Failure		400	{object}	response.ErrorResponse	"Событие уже началось (EVENT_INVALID_STATUS)"
// @Failure		403	{object}	response.ErrorResponse	"Нет прав (NOT_OWNER)"
// @Failure		404	{object}	response.ErrorResponse	"Событие не найдено (EVENT_NOT_FOUND)"
// @Router			/api/events/{id} [delete]
func DeleteEventHandler(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	if err := events.DeleteEvent(c.GetUint("userID"), eventID); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Событие отменено"})
}

// SearchEventsHandler ищет события по фильтру
// @Summary		Поиск событий
// @Description	Поиск событий по необязательным условиям с постраничным выводом
// @Tags			events
// @Accept			json
// @Produce		json
// @Param			filter		body		events.SearchFilter	true	"Фильтр поиска"
// @Param			page_size	query		int	false	"Размер страницы"
// @Param			page_number	query		int	false	"Номер страницы"
// @Success		200	{array}		EventResponse	"Найденные события"
// @Failure		400	{object}	response.ErrorResponse	"Несогласованный фильтр (VALIDATION_ERROR)"
// @Router			/api/events/search [post]
func SearchEventsHandler(c *gin.Context) {
	var filter events.SearchFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var page events.PageFilter
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации параметров страницы",
			Details: err.Error(),
		})
		return
	}

	list, err := events.SearchWithFilter(filter, page)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponseList(list))
}

// GetMyEventsHandler возвращает события, созданные пользователем
// @Summary		Мои события
// @Tags			profile
// @Produce		json
// @Param			page_size	query		int	false	"Размер страницы"
// @Param			page_number	query		int	false	"Номер страницы"
// @Security		BearerAuth
// @Success		200	{array}		EventResponse	"Созданные события"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/profile/events [get]
func GetMyEventsHandler(c *gin.Context) {
	var page events.PageFilter
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации параметров страницы",
			Details: err.Error(),
		})
		return
	}

	list, err := events.FindCreatedByUser(c.GetUint("userID"), page)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponseList(list))
}
