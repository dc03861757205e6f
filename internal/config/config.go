package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Oracle   OracleConfig
	Lottery  LotteryConfig
	Payment  PaymentConfig
	Admin    AdminConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration for the admin surface
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// OracleConfig holds randomness-oracle configuration. CallbackKey
// authenticates inbound fulfillment calls; APIKey authenticates our
// outbound requests.
type OracleConfig struct {
	BaseURL        string
	APIKey         string
	CallbackKey    string
	SeedConfigID   string
	Confirmations  int
	CallbackBudget int64
	Mock           bool
}

// LotteryConfig holds the draw protocol parameters
type LotteryConfig struct {
	TicketPrice         int64
	SalePeriodSeconds   int
	MaxPerPurchase      int
	MinEntries          int
	NumWinners          int
	DerivedValues       int
	FeeRateBps          int64
	MaxFeeRateBps       int64
	GrandPercent        int64
	SecondaryPercent    int64
	TreasuryPercent     int64
	TreasuryAccount     string
	FeeCollectorAccount string
}

// PaymentConfig holds payment gateway configuration
type PaymentConfig struct {
	BaseURL string
	APIKey  string
	Mock    bool
}

// AdminConfig holds the administrative login credentials
type AdminConfig struct {
	Email        string
	PasswordHash string // bcrypt
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "luckydraw")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", "info")

	viper.SetDefault("Oracle.Confirmations", 3)
	viper.SetDefault("Oracle.CallbackBudget", 200000)
	viper.SetDefault("Oracle.SeedConfigID", "default")
	viper.SetDefault("Oracle.Mock", true)

	viper.SetDefault("Lottery.TicketPrice", 100)
	viper.SetDefault("Lottery.SalePeriodSeconds", 3600)
	viper.SetDefault("Lottery.MaxPerPurchase", 100)
	viper.SetDefault("Lottery.MinEntries", 10)
	viper.SetDefault("Lottery.NumWinners", 10)
	viper.SetDefault("Lottery.DerivedValues", 10)
	viper.SetDefault("Lottery.FeeRateBps", 300)
	viper.SetDefault("Lottery.MaxFeeRateBps", 1000)
	viper.SetDefault("Lottery.GrandPercent", 70)
	viper.SetDefault("Lottery.SecondaryPercent", 20)
	viper.SetDefault("Lottery.TreasuryPercent", 10)
	viper.SetDefault("Lottery.TreasuryAccount", "treasury")
	viper.SetDefault("Lottery.FeeCollectorAccount", "fee-collector")

	viper.SetDefault("Payment.Mock", true)
}
