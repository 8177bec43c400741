package server

import (
	"AuthSessionService/internal"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

var (
	DbDriverName       string
	DbConnectionString string
	ServerAddress      string
	RedisAddress       string
	RedisPassword      string
	RedisDatabase      int
	ConfigPath         string
	MigrationsPath     string
)

func init() {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	envPath := filepath.Join(wd, "..", ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Fatalf(".env не найден по пути: %s", envPath)
	}

	DbDriverName = os.Getenv("DATABASE_DRIVER")
	DbConnectionString = os.Getenv("DATABASE_CONNECTION_URL")
	ServerAddress = os.Getenv("SERVER_ADDRESS")
	RedisAddress = os.Getenv("REDIS_ADDRESS")
	RedisPassword = os.Getenv("REDIS_PASSWORD")
	ConfigPath = os.Getenv("CONFIG_PATH")
	MigrationsPath = os.Getenv("MIGRATIONS_PATH")

	if redisDb := os.Getenv("REDIS_DATABASE"); redisDb != "" {
		RedisDatabase, err = strconv.Atoi(redisDb)
		if err != nil {
			log.Fatalf("REDIS_DATABASE должен быть числом: %v", err)
		}
	}
}

func SetupDatabase() (*internal.Database, error) {
	database, err := internal.NewDatabaseConnection(DbDriverName, DbConnectionString)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения: %w", err)
	}
	return database, nil
}

// RunMigrations накатывает миграции из MIGRATIONS_PATH при старте сервиса
func RunMigrations() error {
	migration, err := migrate.New("file://"+MigrationsPath, DbConnectionString)
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}

	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	return nil
}

func SetupRedis() (*internal.RedisClient, error) {
	redisClient, err := internal.NewRedisConnection(RedisAddress, RedisPassword, RedisDatabase)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к redis: %w", err)
	}
	return redisClient, nil
}

func SetupServer() (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:    ServerAddress,
		Handler: router,
	}

	return server, router
}
