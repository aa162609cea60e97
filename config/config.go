package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// ✅ Redis Config (invoice sequence counter)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Razorpay Keys
	RazorpayKey           string
	RazorpaySecret        string
	RazorpayWebhookSecret string

	// ✅ Kafka Config (invoice job queue)
	KafkaBrokers       []string
	KafkaInvoiceTopic  string
	KafkaConsumerGroup string
	InvoiceWorkers     int
	JobTimeoutSeconds  int

	// ✅ SMTP Config
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string

	// ✅ Firebase Storage (invoice PDFs)
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string

	// Foundation identity printed on invoices
	FoundationName    string
	FoundationAddress string
	FoundationPAN     string
	Foundation80GNo   string
	FoundationEmail   string
	FoundationPhone   string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	workers, _ := strconv.Atoi(os.Getenv("INVOICE_WORKERS"))
	if workers <= 0 {
		workers = 3
	}

	jobTimeout, _ := strconv.Atoi(os.Getenv("INVOICE_JOB_TIMEOUT_SECONDS"))
	if jobTimeout <= 0 {
		jobTimeout = 60
	}

	brokers := []string{"localhost:9092"}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	topic := os.Getenv("KAFKA_INVOICE_TOPIC")
	if topic == "" {
		topic = "donation.payment.captured"
	}

	group := os.Getenv("KAFKA_CONSUMER_GROUP")
	if group == "" {
		group = "invoice-workers"
	}

	return &Config{
		Port: os.Getenv("PORT"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		RazorpayKey:           os.Getenv("RAZORPAY_KEY_ID"),
		RazorpaySecret:        os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),

		KafkaBrokers:       brokers,
		KafkaInvoiceTopic:  topic,
		KafkaConsumerGroup: group,
		InvoiceWorkers:     workers,
		JobTimeoutSeconds:  jobTimeout,

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  os.Getenv("SMTP_FROM_NAME"),
		SMTPFromEmail: os.Getenv("SMTP_FROM_EMAIL"),

		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		FirebaseStorageBucket:   os.Getenv("FIREBASE_STORAGE_BUCKET"),

		FoundationName:    getEnvDefault("FOUNDATION_NAME", "Seva Setu Foundation"),
		FoundationAddress: getEnvDefault("FOUNDATION_ADDRESS", "12, Gandhi Road, Bengaluru, Karnataka 560001"),
		FoundationPAN:     os.Getenv("FOUNDATION_PAN"),
		Foundation80GNo:   os.Getenv("FOUNDATION_80G_NO"),
		FoundationEmail:   getEnvDefault("FOUNDATION_EMAIL", "contact@sevasetu.org"),
		FoundationPhone:   os.Getenv("FOUNDATION_PHONE"),
	}
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
