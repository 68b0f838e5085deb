package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"event_manager/internal/events"
	"event_manager/internal/models"
	"event_manager/internal/response"
	"event_manager/internal/storage"

	"github.com/gin-gonic/gin"
)

var ctx = context.Background()

const locationsCacheKey = "locations_all"

type LocationRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// GetLocationsHandler возвращает список площадок
// @Summary		Список площадок
// @Description	Возвращает все площадки, кэширует результат в Redis
// @Tags			locations
// @Produce		json
// @Success		200	{array}		models.Location	"Список площадок"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/locations [get]
func GetLocationsHandler(c *gin.Context) {
	// Проверка кэша
	cached, err := storage.RedisClient.Get(ctx, locationsCacheKey).Result()
	if err == nil && cached != "" {
		var locations []models.Location
		if err := json.Unmarshal([]byte(cached), &locations); err == nil {
			c.JSON(http.StatusOK, locations)
			return
		}
	}

	var locations []models.Location
	if err := storage.DB.Order("id ASC").Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки площадок",
			Details: err.Error(),
		})
		return
	}

	if payload, err := json.Marshal(locations); err == nil {
		storage.RedisClient.Set(ctx, locationsCacheKey, string(payload), time.Hour)
	}

	c.JSON(http.StatusOK, locations)
}

// GetLocationHandler возвращает площадку по идентификатору
// @Summary		Получение площадки
// @Tags			locations
// @Produce		json
// @Param			id	path		string	true	"ID площадки"
// @Success		200	{object}	models.Location	"Площадка"
// @Failure		404	{object}	response.ErrorResponse	"Площадка не найдена (LOCATION_NOT_FOUND)"
// @Router			/api/locations/{id} [get]
func GetLocationHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_LOCATION_ID",
			Message: "Неверный идентификатор площадки",
		})
		return
	}

	var location models.Location
	if err := storage.DB.First(&location, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "LOCATION_NOT_FOUND",
			Message: "Площадка не найдена",
		})
		return
	}
	c.JSON(http.StatusOK, location)
}

// CreateLocationHandler создаёт площадку
// @Summary		Создание площадки
// @Description	Доступно только администратору
// @Tags			locations
// @Accept			json
// @Produce		json
// @Param			location	body		LocationRequest	true	"Данные площадки"
// @Security		BearerAuth
// @Success		201	{object}	models.Location	"Созданная площадка"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		403	{object}	response.ErrorResponse	"Нет прав (ADMIN_ONLY)"
// @Router			/api/locations [post]
func CreateLocationHandler(c *gin.Context) {
	if c.GetString("role") != models.RoleAdmin {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "ADMIN_ONLY",
			Message: "Управление площадками доступно только администратору",
		})
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if err := events.ValidateLocationFields(req.Name, req.Address, req.Capacity, req.Description); err != nil {
		writeDomainError(c, err)
		return
	}

	location := models.Location{
		Name:        req.Name,
		Address:     req.Address,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	if err := storage.DB.Create(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка создания площадки",
			Details: err.Error(),
		})
		return
	}

	storage.RedisClient.Del(ctx, locationsCacheKey)
	c.JSON(http.StatusCreated, location)
}

// UpdateLocationHandler обновляет площадку
// @Summary		Обновление площадки
// @Description	Доступно только администратору
// @Tags			locations
// @Accept			json
// @Produce		json
// @Param			id			path		string			true	"ID площадки"
// @Param			location	body		LocationRequest	true	"Новые данные площадки"
// @Security		BearerAuth
// @Success		200	{object}	models.Location	"Обновлённая площадка"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		403	{object}	response.ErrorResponse	"Нет прав (ADMIN_ONLY)"
// @Failure		404	{object}	response.ErrorResponse	"Площадка не найдена (LOCATION_NOT_FOUND)"
// @Router			/api/locations/{id} [put]
func UpdateLocationHandler(c *gin.Context) {
	if c.GetString("role") != models.RoleAdmin {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "ADMIN_ONLY",
			Message: "Управление площадками доступно только администратору",
		})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_LOCATION_ID",
			Message: "Неверный идентификатор площадки",
		})
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if err := events.ValidateLocationFields(req.Name, req.Address, req.Capacity, req.Description); err != nil {
		writeDomainError(c, err)
		return
	}

	var location models.Location
	if err := storage.DB.First(&location, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "LOCATION_NOT_FOUND",
			Message: "Площадка не найдена",
		})
		return
	}

	location.Name = req.Name
	location.Address = req.Address
	location.Capacity = req.Capacity
	location.Description = req.Description

	if err := storage.DB.Save(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка обновления площадки",
			Details: err.Error(),
		})
		return
	}

	storage.RedisClient.Del(ctx, locationsCacheKey)
	c.JSON(http.StatusOK, location)
}
