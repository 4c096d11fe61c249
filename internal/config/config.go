package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. It is built once at
// startup by Load and handed to each component; nothing else reads the
// process environment. Sections whose credentials are missing report
// Configured() == false and their features degrade instead of crashing.
type Config struct {
	Env         string        // application environment (e.g. "development", "production")
	Port        string        // HTTP port to listen on
	HTTPTimeout time.Duration // cap for outbound calls without a tighter limit

	Airtable   AirtableConfig
	Robokassa  RobokassaConfig
	Telegram   TelegramConfig
	CRM        CRMConfig
	SupportBot SupportBotConfig
	Holidays   HolidaysConfig
	LinkToken  LinkTokenConfig
	Queue      QueueConfig
	Redis      RedisConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
}

// AirtableConfig locates the record store and its tables.
type AirtableConfig struct {
	APIURL          string
	APIKey          string
	BaseID          string
	PurchasesTable  string
	LeadsTable      string
	ExceptionsTable string
}

func (c AirtableConfig) Configured() bool { return c.APIKey != "" && c.BaseID != "" }

// RobokassaConfig holds the payment gateway merchant login and the two
// shared secrets: Secret1 signs outgoing payment links, Secret2 verifies
// result callbacks.
type RobokassaConfig struct {
	PaymentURL    string
	MerchantLogin string
	Secret1       string
	Secret2       string
	IsTest        bool
}

// TelegramConfig is the notification bot and the channel it posts to.
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

func (c TelegramConfig) Configured() bool { return c.BotToken != "" && c.ChatID != 0 }

// CRMConfig points at the cloud function that stores personal data in
// Russia before anything is written to the record store.
type CRMConfig struct {
	URL           string
	InternalToken string
	Timeout       time.Duration
}

// SupportBotConfig is the webhook answering the site's support chat.
type SupportBotConfig struct {
	WebhookURL string
}

// HolidaysConfig is the production-calendar API. Empty URL means the
// built-in calendar only.
type HolidaysConfig struct {
	APIURL      string
	CountryCode string
}

// LinkTokenConfig signs the Telegram deep-link tokens handed out for paid
// purchases.
type LinkTokenConfig struct {
	Secret string
	TTL    time.Duration
}

// QueueConfig is the message broker used for domain events.
type QueueConfig struct {
	URL             string
	ConsumerEnabled bool
	LogDir          string
}

func (c QueueConfig) Configured() bool { return c.URL != "" }

// Load reads .env (when present) and the environment into a Config.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("config: no .env file found, using environment variables")
	}

	cfg := Config{
		Env:         envStr("APP_ENV", "development"),
		Port:        envStr("APP_PORT", "8080"),
		HTTPTimeout: envDur("HTTP_CLIENT_TIMEOUT", 10*time.Second),
		Airtable: AirtableConfig{
			APIURL:          envStr("AIRTABLE_API_URL", "https://api.airtable.com/v0"),
			APIKey:          envStr("AIRTABLE_API_KEY", ""),
			BaseID:          envStr("AIRTABLE_BASE_ID", ""),
			PurchasesTable:  envStr("AIRTABLE_PURCHASE_WEBSITE_TABLE", ""),
			LeadsTable:      envStr("AIRTABLE_LEADS_TABLE_ID", ""),
			ExceptionsTable: envStr("AIRTABLE_EXCEPTIONS_TABLE_ID", ""),
		},
		Robokassa: RobokassaConfig{
			PaymentURL:    envStr("ROBO_PAYMENT_URL", "https://auth.robokassa.ru/Merchant/Index.aspx"),
			MerchantLogin: envStr("ROBO_ID", ""),
			Secret1:       envStr("ROBO_SECRET1", ""),
			Secret2:       envStr("ROBO_SECRET2", ""),
			IsTest:        envBool("ROBO_IS_TEST", false),
		},
		Telegram: TelegramConfig{
			BotToken: envStr("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   envInt64("TELEGRAM_CHAT_ID", 0),
		},
		CRM: CRMConfig{
			URL:           envStr("YDB_CF_URL", ""),
			InternalToken: envStr("CF_INTERNAL_TOKEN", ""),
			Timeout:       envDur("CRM_TIMEOUT", 7*time.Second),
		},
		SupportBot: SupportBotConfig{
			WebhookURL: envStr("N8N_WEBHOOK_URL", ""),
		},
		Holidays: HolidaysConfig{
			APIURL:      envStr("HOLIDAYS_API_URL", ""),
			CountryCode: envStr("HOLIDAYS_COUNTRY", "ru"),
		},
		LinkToken: LinkTokenConfig{
			Secret: envStr("LINK_TOKEN_SECRET", ""),
			TTL:    envDur("LINK_TOKEN_TTL", 30*24*time.Hour),
		},
		Queue: QueueConfig{
			URL:             envStr("RABBITMQ_URL", envStr("AMQP_URL", "")),
			ConsumerEnabled: envBool("QUEUE_CONSUMER_ENABLED", false),
			LogDir:          envStr("QUEUE_LOG_DIR", "logs"),
		},
		Redis:     LoadRedisConfig(),
		Cache:     LoadCacheConfig(),
		RateLimit: LoadRateLimitConfig(),
	}
	return cfg
}

func envInt64(k string, d int64) int64 {
	v := strings.TrimSpace(envStr(k, ""))
	if v == "" {
		return d
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("config: invalid int for %s: %q", k, v)
		return d
	}
	return n
}
