// Package kss is the key storage service of the owner console. It persists the small pieces
// of client state which must survive a restart, most notably the bearer token and the
// language preference. There are three backends: the local file system, AWS S3 and memory.
package kss

import (
	"context"
	"errors"
	"fmt"
)

// Well known keys
const (
	// KeyToken holds the raw bearer token of the signed in owner
	KeyToken = "owner_token"
	// KeyLanguage holds the last selected language code
	KeyLanguage = "i18nextLng"
)

// ErrNotFound is returned by Get when a key does not exist
var ErrNotFound = errors.New("key not found")

// Driver defines the interface for the KSS service
type Driver interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// DriverType represents the different type of KSS Drivers
type DriverType string

// DriverTypeLocal is the local filesystem implementation of the KSS service
const DriverTypeLocal DriverType = "Local"

// DriverTypeAWSS3 is the AWS S3 implementation of the KSS service
const DriverTypeAWSS3 DriverType = "AWSS3"

// DriverTypeMemory keeps everything in memory, it is meant for tests and the sandbox
const DriverTypeMemory DriverType = "Memory"

// Configuration contains the configuration for the KSS service
type Configuration struct {
	DriverType         DriverType
	LocalConfiguration *LocalConfiguration
	S3Configuration    *S3Configuration
}

// LocalConfiguration contains the configuration for the local filesystem KSS service
type LocalConfiguration struct {
	BasePath string
}

// S3Configuration contains the configuration for the S3 KSS service
type S3Configuration struct {
	AWSBucketName string
	AWSRegion     string
	AccessID      string
	AccessKey     string
	KeyPrefix     string
}

// New returns the driver selected by the configuration
func New(config Configuration) (Driver, error) {
	switch config.DriverType {
	case DriverTypeLocal:
		if config.LocalConfiguration == nil {
			return nil, fmt.Errorf("driver %s needs a local configuration", config.DriverType)
		}
		return NewLocalFilesystem(config.LocalConfiguration.BasePath)
	case DriverTypeAWSS3:
		if config.S3Configuration == nil {
			return nil, fmt.Errorf("driver %s needs an S3 configuration", config.DriverType)
		}
		return NewS3(*config.S3Configuration)
	case DriverTypeMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown kss driver type '%s'", config.DriverType)
}

// GetString is a convenience wrapper around Get which returns an empty string for missing keys
func GetString(ctx context.Context, driver Driver, key string) (string, error) {
	data, err := driver.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
