package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Ledger   LedgerConfig   `json:"ledger"`
	Security SecurityConfig `json:"security"`
	Aws      AwsConfig      `json:"aws"`
	Mongo    MongoConfig    `json:"mongo"`
	Elastic  ElasticConfig  `json:"elastic"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseConfig represents the archive database configuration
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// LedgerConfig tunes the core engine
type LedgerConfig struct {
	DeployerID            string `json:"deployer_id"`
	VerificationThreshold uint64 `json:"verification_threshold"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

// AwsConfig covers the S3 certificate store, the DynamoDB telemetry table
// and the SES/SNS notification channels
type AwsConfig struct {
	Region            string `json:"region"`
	AccessKeyID       string `json:"access_key_id"`
	SecretAccessKey   string `json:"secret_access_key"`
	CertificateBucket string `json:"certificate_bucket"`
	TelemetryTable    string `json:"telemetry_table"`
	AlertTopicARN     string `json:"alert_topic_arn"`
	ReceiptSender     string `json:"receipt_sender"`
}

// MongoConfig for the audit log store
type MongoConfig struct {
	URI        string `json:"uri"`
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

// ElasticConfig for the listing search index
type ElasticConfig struct {
	Addresses []string `json:"addresses"`
	Index     string   `json:"index"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "carbonmarket_ledger",
			SSLMode: "disable",
		},
		Ledger: LedgerConfig{
			VerificationThreshold: 10,
		},
		Aws: AwsConfig{
			Region:            "eu-west-1",
			CertificateBucket: "carbonmarket-certificates",
			TelemetryTable:    "sensor_readings",
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "carbonmarket",
			Collection: "audit_log",
		},
		Elastic: ElasticConfig{
			Addresses: []string{"http://localhost:9200"},
			Index:     "listings",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if deployer := os.Getenv("LEDGER_DEPLOYER_ID"); deployer != "" {
		config.Ledger.DeployerID = deployer
	}
	if threshold := os.Getenv("LEDGER_VERIFICATION_THRESHOLD"); threshold != "" {
		if n, err := strconv.ParseUint(threshold, 10, 64); err == nil && n > 0 {
			config.Ledger.VerificationThreshold = n
		}
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.Aws.Region = region
	}
	if bucket := os.Getenv("CERTIFICATE_BUCKET"); bucket != "" {
		config.Aws.CertificateBucket = bucket
	}
	if table := os.Getenv("TELEMETRY_TABLE"); table != "" {
		config.Aws.TelemetryTable = table
	}
	if topic := os.Getenv("ALERT_TOPIC_ARN"); topic != "" {
		config.Aws.AlertTopicARN = topic
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		config.Mongo.URI = uri
	}
	if addr := os.Getenv("ELASTIC_ADDRESS"); addr != "" {
		config.Elastic.Addresses = []string{addr}
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
