// Package config holds the environment configuration of the owner console and the sandbox backend
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// DefaultAPIURL is the production backend
const DefaultAPIURL = "https://backend.aqaar.dussur.sa/api"

// Config holds the configuration for the owner console
//
// use AQAAR_API_URL="http://localhost:3000/api" to talk to a local sandbox
type Config struct {
	APIURL      string        `env:"AQAAR_API_URL,default=https://backend.aqaar.dussur.sa/api" description:"base url of the REST API"`
	HTTPTimeout time.Duration `env:"AQAAR_HTTP_TIMEOUT,default=20s" description:"timeout for a single HTTP request"`

	StateDriver string `env:"AQAAR_STATE_DRIVER,default=Local" description:"where the session is persisted: Local, AWSS3 or Memory"`
	StateDir    string `env:"AQAAR_STATE_DIR" description:"folder for the Local state driver, defaults to $HOME/.aqaar"`
	S3Bucket    string `env:"AQAAR_S3_BUCKET" description:"bucket for the AWSS3 state driver and s3:// image references"`
	S3Region    string `env:"AQAAR_S3_REGION,default=eu-central-1" description:"region of the bucket"`
	S3Prefix    string `env:"AQAAR_S3_PREFIX" description:"key prefix inside the bucket"`
	S3AccessID  string `env:"AQAAR_S3_ACCESS_ID" description:"access key id for the bucket"`
	S3AccessKey string `env:"AQAAR_S3_ACCESS_KEY" description:"secret access key for the bucket"`

	LogLevel string `env:"AQAAR_LOG_LEVEL,default=info" description:"logrus log level"`
	LogFile  string `env:"AQAAR_LOG_FILE" description:"optional log file, rotated daily"`

	KafkaBrokers string `env:"AQAAR_KAFKA_BROKERS" description:"comma separated brokers for the owner action audit trail"`
	KafkaTopic   string `env:"AQAAR_KAFKA_TOPIC,default=aqaar-owner-actions" description:"topic for the audit trail"`

	SandboxAddr   string `env:"AQAAR_SANDBOX_ADDR,default=:3000" description:"listen address of the sandbox backend"`
	SandboxSecret string `env:"AQAAR_SANDBOX_SECRET,default=sandbox-secret" description:"HMAC secret for sandbox tokens"`
}

// Load reads an optional .env file and decodes the environment into a Config
func Load(envPath ...string) (*Config, error) {
	if err := godotenv.Load(envPath...); err != nil && len(envPath) > 0 {
		return nil, fmt.Errorf("could not load env file %v: %w", envPath, err)
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, err
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		cfg.StateDir = filepath.Join(home, ".aqaar")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return cfg, nil
}
