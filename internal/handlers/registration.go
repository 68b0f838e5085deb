package handlers

import (
	"net/http"

	"event_manager/internal/events"
	"event_manager/internal/response"
	"event_manager/internal/ws"

	"github.com/gin-gonic/gin"
)

// RegisterOnEventHandler обрабатывает запись пользователя на событие
// @Summary		Запись на событие
// @Description	Записывает пользователя на событие, если есть свободные места и событие ещё не началось
// @Tags			registrations
// @Produce		json
// @Param			id	path		string	true	"ID события"
// @Security		BearerAuth
// @Success		200	{object}	EventResponse	"Событие с обновлённым числом занятых мест"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка условия записи (ALREADY_REGISTERED, OWNER_IS_MEMBER, EVENT_ALREADY_STARTED, EVENT_FINISHED_OR_CANCELLED)"
// @Failure		404	{object}	response.ErrorResponse	"Событие не найдено (EVENT_NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse	"Свободные места закончились (PLACES_OVERFLOW)"
// @Router			/api/events/{id}/register [post]
func RegisterOnEventHandler(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	event, err := events.RegisterOnEvent(userID, eventID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "user_registered",
		EventID:   eventID,
		Data: map[string]interface{}{
			"user_id":         userID,
			"occupied_places": event.OccupiedPlaces,
		},
	})

	c.JSON(http.StatusOK, toEventResponse(event))
}

// CancelRegistrationHandler обрабатывает отмену записи на событие
// @Summary		Отмена записи
// @Description	Отменяет активную запись пользователя на событие до его начала
// @Tags			registrations
// @Produce		json
// @Param			id	path		string	true	"ID события"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Запись отменена"
// @Failure		400	{object}	response.ErrorResponse	"Событие уже началось (EVENT_INVALID_STATUS) или запись не активна (REGISTRATION_NOT_ACTIVE)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (REGISTRATION_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Рассинхронизация счётчика мест (PLACES_INCONSISTENT)"
// @Router			/api/events/{id}/register [delete]
func CancelRegistrationHandler(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	if err := events.CancelRegistration(userID, eventID); err != nil {
		writeDomainError(c, err)
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "user_cancelled",
		EventID:   eventID,
		Data: map[string]interface{}{
			"user_id": userID,
		},
	})

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Запись на событие отменена"})
}

// GetMyBookingsHandler возвращает события с активной записью пользователя
// @Summary		Мои записи
// @Description	Список событий, на которые у пользователя есть активная запись
// @Tags			profile
// @Produce		json
// @Param			page_size	query		int	false	"Размер страницы"
// @Param			page_number	query		int	false	"Номер страницы"
// @Security		BearerAuth
// @Success		200	{array}		EventResponse	"События с активной записью"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/profile/bookings [get]
func GetMyBookingsHandler(c *gin.Context) {
	var page events.PageFilter
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации параметров страницы",
			Details: err.Error(),
		})
		return
	}

	list, err := events.FindBookedByUser(c.GetUint("userID"), page)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponseList(list))
}
