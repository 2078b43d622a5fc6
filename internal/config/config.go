package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (RS256 key pair, PEM encoded; escaped "\n" sequences are accepted)
	JWTPrivateKey string
	JWTPublicKey  string
	JWTExpiresIn  time.Duration

	// OTP
	OTPCodeLength  int
	OTPExpiry      time.Duration
	OTPMaxAttempts int

	// Appointments
	MaxPendingAppointments int

	// SMS gateway
	SMSProvider       string // celtiis | twilio | log
	CeltiisAPIKey     string
	CeltiisAPIURL     string
	CeltiisSenderName string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lokita_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTPrivateKey: unescapePEM(getEnv("JWT_PRIVATE_KEY", "")),
		JWTPublicKey:  unescapePEM(getEnv("JWT_PUBLIC_KEY", "")),
		JWTExpiresIn:  parseDuration(getEnv("JWT_EXPIRES_IN", "168h"), 168*time.Hour),

		OTPCodeLength:  parseInt(getEnv("OTP_CODE_LENGTH", "6"), 6),
		OTPExpiry:      parseDuration(getEnv("OTP_EXPIRY", "3m"), 3*time.Minute),
		OTPMaxAttempts: parseInt(getEnv("OTP_MAX_ATTEMPTS", "3"), 3),

		MaxPendingAppointments: parseInt(getEnv("MAX_PENDING_APPOINTMENTS_PER_USER", "3"), 3),

		SMSProvider:       getEnv("SMS_PROVIDER", "log"),
		CeltiisAPIKey:     getEnv("CELTIIS_API_KEY", ""),
		CeltiisAPIURL:     getEnv("CELTIIS_API_URL", "https://api.celtiis.com/v1"),
		CeltiisSenderName: getEnv("CELTIIS_SENDER_NAME", "Lokita"),
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:  getEnv("TWILIO_FROM_NUMBER", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// unescapePEM restores newlines in key material passed through single-line env vars.
func unescapePEM(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
