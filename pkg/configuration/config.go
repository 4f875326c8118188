package configuration

import (
	"time"

	cleanenvport "github.com/wb-go/wbf/config/cleanenv-port"
)

// ConfServer — параметры HTTP-сервера
type ConfServer struct {
	HostName string `env:"SERVICE_HOST_NAME" env-default:"localhost"`
	Port     int    `env:"SERVICE_PORT"       env-default:"8080"`
	GinMode  string `env:"GIN_MODE"           env-default:"debug"`
}

// ConfDB — параметры подключения к PostgreSQL
type ConfDB struct {
	HostName string `env:"DB_HOST_NAME" env-default:"dbPostgres"`
	Port     int    `env:"DB_PORT"      env-default:"5432"`
	Name     string `env:"DB_NAME"      env-default:"db-postgres"`
	User     string `env:"DB_USER"      env-default:"postgres"`
	Password string `env:"DB_PASSWORD"  env-default:"postgres"`
}

// ConfCache — параметры Redis
type ConfCache struct {
	HostName string        `env:"REDIS_HOST_NAME" env-default:"dbRedis"`
	Port     int           `env:"REDIS_PORT"      env-default:"6379"`
	Password string        `env:"REDIS_PASSWORD"  env-default:""`
	DB       int           `env:"REDIS_DB"        env-default:"0"`
	TTL      time.Duration `env:"REDIS_TTL"       env-default:"600s"`
	Warming  time.Duration `env:"REDIS_WARMING"   env-default:"24h"`
}

// ConfTracker — параметры обработки переходов
type ConfTracker struct {
	// FallbackURL - адрес, куда уводим посетителя, если нормальный редирект невозможен
	FallbackURL string `env:"TRACKER_FALLBACK_URL" env-default:"https://google.com"`
	// CapturePage - отдавать ли промежуточную страницу с запросом геолокации вместо мгновенного 302
	CapturePage bool `env:"TRACKER_CAPTURE_PAGE" env-default:"true"`
	// ProbeTimeout - таймаут одного обращения к внешним сервисам определения IP
	ProbeTimeout time.Duration `env:"TRACKER_PROBE_TIMEOUT" env-default:"3s"`
	// VisitsLimit - ограничение выборки по умолчанию для списка всех посещений
	VisitsLimit int `env:"TRACKER_VISITS_LIMIT" env-default:"500"`
}

// Config — корневая структура конфигурации
type Config struct {
	Server  ConfServer
	DB      ConfDB
	Redis   ConfCache
	Tracker ConfTracker
}

// ReadConfig загружает .env файл из корня проекта и возвращает заполненную структуру Config
func ReadConfig() (*Config, error) {

	var config Config

	// загружаем конфигурацию из файла .env напрямую в структуру
	if err := cleanenvport.LoadPath("./.env", &config); err != nil {
		return nil, err
	}

	return &config, nil
}
