package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Reservation ReservationConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type ReservationConfig struct {
	FullFare decimal.Decimal
	HalfFare decimal.Decimal
	// ConditionalStock switches combo stock decrements to a single
	// conditional UPDATE instead of read-modify-write.
	ConditionalStock bool
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	SeatLockTTL time.Duration
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "cinema-reservation")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("FARE_FULL", "20.00")
	viper.SetDefault("FARE_HALF", "10.00")
	viper.SetDefault("STOCK_CONDITIONAL_UPDATE", false)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SEAT_LOCK_TTL", "30s")
	viper.SetDefault("KAFKA_TOPIC", "cinema.orders")

	// .env is optional; environment variables always win
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	viper.AutomaticEnv()

	fullFare, err := decimal.NewFromString(viper.GetString("FARE_FULL"))
	if err != nil {
		return nil, errors.New("FARE_FULL must be a decimal amount")
	}
	halfFare, err := decimal.NewFromString(viper.GetString("FARE_HALF"))
	if err != nil {
		return nil, errors.New("FARE_HALF must be a decimal amount")
	}

	var brokers []string
	for _, b := range strings.Split(viper.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Reservation: ReservationConfig{
			FullFare:         fullFare,
			HalfFare:         halfFare,
			ConditionalStock: viper.GetBool("STOCK_CONDITIONAL_UPDATE"),
		},
		Redis: RedisConfig{
			Addr:        viper.GetString("REDIS_ADDR"),
			Password:    viper.GetString("REDIS_PASSWORD"),
			DB:          viper.GetInt("REDIS_DB"),
			SeatLockTTL: viper.GetDuration("SEAT_LOCK_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
	}

	return config, nil
}
