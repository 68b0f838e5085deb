package main

import (
	"fmt"
	"log"
	"os"

	_ "event_manager/docs"
	"event_manager/internal/auth"
	"event_manager/internal/handlers"
	"event_manager/internal/models"
	"event_manager/internal/storage"
	"event_manager/internal/tasks"
	"event_manager/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Сервис управления событиями
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(&models.User{}, &models.Location{}, &models.Event{}, &models.Registration{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	storage.CreateDefaultAdmin()

	tasks.InitScheduler()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/refresh", handlers.RefreshToken)
	}

	r.GET("/api/events/:id", handlers.GetEventHandler)
	r.POST("/api/events/search", handlers.SearchEventsHandler)
	r.GET("/api/locations", handlers.GetLocationsHandler)
	r.GET("/api/locations/:id", handlers.GetLocationHandler)
	r.GET("/api/events/:id/ws", ws.EventWebSocketHandler)

	apiGroup := r.Group("/api", auth.AuthMiddleware())
	{
		apiGroup.POST("/events", handlers.CreateEventHandler)
		apiGroup.PUT("/events/:id", handlers.UpdateEventHandler)
		apiGroup.DELETE("/events/:id", handlers.DeleteEventHandler)
		apiGroup.POST("/events/:id/register", handlers.RegisterOnEventHandler)
		apiGroup.DELETE("/events/:id/register", handlers.CancelRegistrationHandler)
		apiGroup.POST("/locations", handlers.CreateLocationHandler)
		apiGroup.PUT("/locations/:id", handlers.UpdateLocationHandler)
	}

	profileGroup := r.Group("/profile", auth.AuthMiddleware())
	{
		profileGroup.GET("/events", handlers.GetMyEventsHandler)
		profileGroup.GET("/bookings", handlers.GetMyBookingsHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
