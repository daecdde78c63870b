package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"go-restaurant-pos/database"
	"go-restaurant-pos/gateway"
	middleware "go-restaurant-pos/middleware"
	"go-restaurant-pos/repository"
	routes "go-restaurant-pos/routes"
	"go-restaurant-pos/services"
	"go-restaurant-pos/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("no .env file found, relying on environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	if err := database.EnsureIndexes(database.Client); err != nil {
		log.Fatalf("index creation failed: %v", err)
	}

	router := gin.New()
	router.Use(gin.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:9000"},
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	hub := ws.NewHub()

	sessionRepo := repository.NewSessionRepository(database.Client)
	orderRepo := repository.NewOrderRepository(database.Client)
	paymentRepo := repository.NewPaymentRepository(database.Client)

	omiseClient := gateway.NewClient(os.Getenv("OMISE_SECRET_KEY"))

	sessionService := services.NewSessionService(sessionRepo, hub)
	orderService := services.NewOrderService(orderRepo, sessionService, hub)
	paymentService := services.NewPaymentService(paymentRepo, omiseClient, hub, os.Getenv("OMISE_RETURN_URI"))

	router.GET("/ws", hub.HandleWebSocket())

	routes.AuthRoutes(router)
	routes.PublicMenuRoutes(router)
	routes.PublicSessionRoutes(router, sessionService)
	routes.PublicOrderRoutes(router, orderService)
	routes.PublicPaymentRoutes(router, paymentService)

	router.Use(middleware.Authentication())
	routes.UserRoutes(router)
	routes.BranchRoutes(router)
	routes.TableRoutes(router)
	routes.SessionRoutes(router, sessionService)
	routes.OrderRoutes(router, orderService)
	routes.PaymentRoutes(router, paymentService)
	routes.MenuRoutes(router)
	routes.IngredientRoutes(router)
	routes.StockRoutes(router)
	routes.WaitlistRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	router.Run(":" + port)
}
