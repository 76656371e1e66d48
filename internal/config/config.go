// Package config загружает конфигурацию Centinela из окружения.
//
// Для локальной разработки поддерживается .env файл (godotenv).
// Обязательные переменные: DB_HOST, DB_NAME, DB_USER, DB_PASSWORD,
// DB_PORT, DISCORD_BOT_TOKEN, DISCORD_USER_ID.
// Необязательные: USERS_TO_MONITOR, AMQP_URL, PUSHGATEWAY_URL.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config — конфигурация одного запуска аудита.
type Config struct {
	// Параметры подключения к PostgreSQL.
	DBHost     string
	DBName     string
	DBUser     string
	DBPassword string
	DBPort     string

	// BotToken — токен Discord-бота.
	BotToken string

	// RecipientID — идентификатор получателя DM (snowflake).
	RecipientID string

	// MonitoredUsers — пользователи, чью посещаемость проверяем.
	// Пустой список допустим: проверка посещаемости отработает вхолостую.
	MonitoredUsers []int64

	// AMQPURL — адрес RabbitMQ для зеркалирования алертов (опционально).
	AMQPURL string

	// PushgatewayURL — адрес Pushgateway для метрик (опционально).
	PushgatewayURL string
}

// Load читает .env (если есть) и собирает конфигурацию из окружения.
// Все отсутствующие обязательные переменные перечисляются в одной ошибке.
func Load() (*Config, error) {
	// .env необязателен: в production переменные приходят из окружения.
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:         os.Getenv("DB_HOST"),
		DBName:         os.Getenv("DB_NAME"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBPort:         os.Getenv("DB_PORT"),
		BotToken:       os.Getenv("DISCORD_BOT_TOKEN"),
		RecipientID:    os.Getenv("DISCORD_USER_ID"),
		AMQPURL:        os.Getenv("AMQP_URL"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}

	var missing []string
	for _, v := range []struct {
		name  string
		value string
	}{
		{"DB_HOST", cfg.DBHost},
		{"DB_NAME", cfg.DBName},
		{"DB_USER", cfg.DBUser},
		{"DB_PASSWORD", cfg.DBPassword},
		{"DB_PORT", cfg.DBPort},
		{"DISCORD_BOT_TOKEN", cfg.BotToken},
		{"DISCORD_USER_ID", cfg.RecipientID},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s",
			strings.Join(missing, ", "))
	}

	// Discord ID передаётся дальше строкой, но обязан быть числом.
	if _, err := strconv.ParseUint(cfg.RecipientID, 10, 64); err != nil {
		return nil, fmt.Errorf("DISCORD_USER_ID must be an integer: %w", err)
	}

	users, err := ParseUserList(os.Getenv("USERS_TO_MONITOR"))
	if err != nil {
		return nil, fmt.Errorf("parse USERS_TO_MONITOR: %w", err)
	}
	cfg.MonitoredUsers = users

	return cfg, nil
}

// ParseUserList разбирает список идентификаторов через запятую.
// Пустая строка и пустые элементы допустимы.
func ParseUserList(raw string) ([]int64, error) {
	var users []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", part, err)
		}
		users = append(users, id)
	}
	return users, nil
}

// DSN возвращает строку подключения к PostgreSQL в keyword-формате.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword)
}
