package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/ramyakv/ecom-store/internal/app"
	"github.com/ramyakv/ecom-store/internal/app/handlers"
	"github.com/ramyakv/ecom-store/internal/config"
	"github.com/ramyakv/ecom-store/internal/jwt-new/jwtmiddleware"
	"github.com/ramyakv/ecom-store/internal/lib/logger"
	"github.com/ramyakv/ecom-store/internal/lib/logger/handlers/urllog"
	"github.com/ramyakv/ecom-store/internal/service"
	"github.com/ramyakv/ecom-store/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	taxRepo := storage.NewTaxRateRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, productRepo)
	cartService := service.NewCartService(application.Logger, application.DB, userRepo, productRepo, cartRepo)
	taxService := service.NewTaxService(application.Logger, taxRepo,
		application.Config.Checkout.TaxFallbackPercent, application.Config.Checkout.TaxTimeout)
	checkoutService := service.NewCheckoutService(application.Logger, application.DB,
		userRepo, cartRepo, orderRepo, taxService, application.Config.Checkout.DeliveryLeadDays)
	orderService := service.NewOrderService(application.Logger, orderRepo)

	// публичные эндпоинты: аутентификация, каталог, налоговые ставки
	router.Post("/api/auth/register", handlers.RegisterHandler(application.Logger, authService))
	router.Post("/api/auth/login", handlers.LoginHandler(application.Logger, authService))
	router.Get("/api/products", handlers.ProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/{id}", handlers.ProductHandler(application.Logger, catalogService))
	router.Get("/api/tax/{country}", handlers.TaxHandler(application.Logger, taxService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		// эндпоинты корзины
		r.Get("/api/cart", handlers.GetCartHandler(application.Logger, cartService))
		r.Post("/api/cart", handlers.AddToCartHandler(application.Logger, cartService))
		r.Delete("/api/cart/{cartItemId}", handlers.RemoveFromCartHandler(application.Logger, cartService))
		// оформление заказа и история покупок
		r.Post("/api/checkout", handlers.CheckoutHandler(application.Logger, checkoutService))
		r.Get("/api/orders", handlers.OrdersHandler(application.Logger, orderService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
