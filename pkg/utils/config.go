package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Admission AdmissionConfig
	Scanner   ScannerConfig
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

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NATSConfig struct {
	URL string
}

type AdmissionConfig struct {
	// SlotCapacity is the seat quota per time slot.
	SlotCapacity int
	// TokenHorizonHours is how long past the visit date a token stays
	// valid. Must outlive the visit window: same-day walk-ins are the
	// common path.
	TokenHorizonHours int
	SweepIntervalMins int
}

type ScannerConfig struct {
	// DeviceKeyHash is the bcrypt hash of the shared scanner device key.
	DeviceKeyHash string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("NATS_URL", "nats://localhost:4222")
	viper.SetDefault("SLOT_CAPACITY", 120)
	viper.SetDefault("TOKEN_HORIZON_HOURS", 24)
	viper.SetDefault("SWEEP_INTERVAL_MINUTES", 15)
	viper.SetDefault("LOG_PATH", "logs/")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

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
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASS"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		NATS: NATSConfig{
			URL: viper.GetString("NATS_URL"),
		},
		Admission: AdmissionConfig{
			SlotCapacity:      viper.GetInt("SLOT_CAPACITY"),
			TokenHorizonHours: viper.GetInt("TOKEN_HORIZON_HOURS"),
			SweepIntervalMins: viper.GetInt("SWEEP_INTERVAL_MINUTES"),
		},
		Scanner: ScannerConfig{
			DeviceKeyHash: viper.GetString("SCANNER_KEY_HASH"),
		},
	}

	return config, nil
}
