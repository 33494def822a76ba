package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/tienda/internal/config"
	"github.com/example/tienda/internal/handlers"
	"github.com/example/tienda/internal/middleware"
	"github.com/example/tienda/internal/services"
	"github.com/example/tienda/internal/storage"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	gateway := services.NewMercadoPagoService(cfg.MPBaseURL, cfg.MPAccessToken)
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	orderStore := storage.NewOrderStore(db)

	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	marketingHandler := handlers.NewMarketingHandler(db)
	couponHandler := handlers.NewCouponHandler(db)
	orderHandler := handlers.NewOrderHandler(db)
	adminHandler := handlers.NewAdminHandler(db)
	paymentHandler := handlers.NewPaymentHandler(gateway, orderStore, telegramService, cfg)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Storefront reads
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	api.Get("/banners", marketingHandler.ListBanners)

	api.Post("/coupons/validate", couponHandler.ValidateCoupon)

	// Payment gateway integration
	payments := api.Group("/payments")
	payments.Post("/preference", paymentHandler.CreatePreference)
	payments.Post("/webhook", paymentHandler.Webhook)

	// Authenticated user routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))
	protected.Get("/profile", authHandler.GetProfile)
	protected.Put("/profile", authHandler.UpdateProfile)

	// Back-office routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireAdmin())

	admin.Post("/categories", catalogHandler.CreateCategory)
	admin.Put("/categories/:id", catalogHandler.UpdateCategory)
	admin.Delete("/categories/:id", catalogHandler.DeleteCategory)

	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)

	admin.Post("/banners", marketingHandler.CreateBanner)
	admin.Put("/banners/reorder", marketingHandler.ReorderBanners)
	admin.Put("/banners/:id", marketingHandler.UpdateBanner)
	admin.Delete("/banners/:id", marketingHandler.DeleteBanner)

	admin.Get("/coupons", couponHandler.ListCoupons)
	admin.Post("/coupons", couponHandler.CreateCoupon)
	admin.Delete("/coupons/:id", couponHandler.DeleteCoupon)

	admin.Get("/orders", orderHandler.ListOrders)
	admin.Get("/orders/:id", orderHandler.GetOrder)
	admin.Patch("/orders/:id/status", orderHandler.UpdateStatus)

	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/customers", adminHandler.ListCustomers)
}
