// Package s3 reads blacklist objects from any S3-compatible store (AWS, R2, MinIO).
package s3

import (
	"os"
	"strings"
)

// Config addresses one bucket. Empty credentials fall back to the default AWS
// chain (env, shared config, instance role).
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// ConfigFromEnv reads AWS_BUCKET, AWS_REGION, AWS_ENDPOINT, AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_PATH_STYLE.
func ConfigFromEnv() Config {
	region := strings.TrimSpace(os.Getenv("AWS_REGION"))
	if region == "" {
		region = "auto"
	}
	return Config{
		Bucket:    strings.TrimSpace(os.Getenv("AWS_BUCKET")),
		Region:    region,
		Endpoint:  strings.TrimSpace(os.Getenv("AWS_ENDPOINT")),
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		PathStyle: os.Getenv("AWS_PATH_STYLE") == "1",
	}
}

// Configured reports whether a bucket is named; without one the S3 source is skipped.
func (c Config) Configured() bool { return c.Bucket != "" }
