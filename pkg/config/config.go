package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Mailjet   MailjetConfig
	Scheduler SchedulerConfig
	Referral  ReferralConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type SchedulerConfig struct {
	SweepSpec            string
	InactivityNudgeSpec  string
	KycReminderSpec      string
	InactivityDays       int
	KycReminderAfterDays int
	MaxDispatchRetries   int
}

type ReferralConfig struct {
	RewardAmount   float64
	RewardCurrency string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	rewardAmount, err := strconv.ParseFloat(getEnv("REFERRAL_REWARD_AMOUNT", "1000"), 64)
	if err != nil {
		return nil, errors.New("invalid referral reward amount")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Payvance Onboarding API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "payvance"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", "https://api.mailjet.com"),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", ""),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", "Payvance"),
		},
		Scheduler: SchedulerConfig{
			SweepSpec:            getEnv("SCHEDULER_SWEEP_SPEC", "* * * * *"),
			InactivityNudgeSpec:  getEnv("SCHEDULER_INACTIVITY_SPEC", "0 9 * * *"),
			KycReminderSpec:      getEnv("SCHEDULER_KYC_REMINDER_SPEC", "0 10 * * *"),
			InactivityDays:       getEnvInt("INACTIVITY_NUDGE_DAYS", 7),
			KycReminderAfterDays: getEnvInt("KYC_REMINDER_AFTER_DAYS", 3),
			MaxDispatchRetries:   getEnvInt("MAX_DISPATCH_RETRIES", 3),
		},
		Referral: ReferralConfig{
			RewardAmount:   rewardAmount,
			RewardCurrency: getEnv("REFERRAL_REWARD_CURRENCY", "NGN"),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return n
}
