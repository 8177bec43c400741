package main

import (
	"AuthSessionService/config"
	"AuthSessionService/config/server"
	"AuthSessionService/internal/handler"
	"AuthSessionService/internal/repository"
	"AuthSessionService/internal/security"
	"AuthSessionService/internal/service"
	"context"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(server.ConfigPath)
	if err != nil {
		log.Fatalf("не удалось загрузить конфигурацию: %v", err)
	}

	database, err := server.SetupDatabase()
	if err != nil {
		log.Fatalf("не удалось подключиться к БД: %v", err)
	}
	defer database.Close()

	if err := server.RunMigrations(); err != nil {
		log.Fatalf("не удалось применить миграции: %v", err)
	}

	redisClient, err := server.SetupRedis()
	if err != nil {
		log.Fatalf("не удалось подключиться к redis: %v", err)
	}
	defer redisClient.Close()

	server, router := server.SetupServer()

	jwtService, err := security.NewJWTService(cfg.JWT)
	if err != nil {
		log.Fatalf("не удалось создать jwt сервис: %v", err)
	}

	userRepository := repository.NewUserRepository(database)
	blacklistRepository := repository.NewBlacklistRepository(redisClient)
	authenticationService := service.NewAuthenticationService(userRepository, blacklistRepository, jwtService, cfg)
	authenticationHandler := handler.NewAuthenticationHandler(authenticationService)

	router.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService, blacklistRepository))
			r.Get("/me", authenticationHandler.Me)
			r.Get("/logout", authenticationHandler.Logout)
		})
		r.Group(func(r chi.Router) {
			r.Post("/signup", authenticationHandler.Signup)
			r.Post("/login", authenticationHandler.Login)
			r.Get("/refresh", authenticationHandler.RefreshToken)
		})
	})

	runServer(ctx, server)
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
