package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed checks.yaml
var checksYAML []byte

type Config struct {
	Database DatabaseConfig
	S3       S3Config
	FaceAPI  FaceAPIConfig
	Storage  StorageConfig
	Checks   ChecksConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type S3Config struct {
	Endpoint  string // S3-compatible endpoint, e.g. s3.amazonaws.com or minio:9000
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type FaceAPIConfig struct {
	URL    string // base URL of the face detection service
	APIKey string
}

type StorageConfig struct {
	UploadDir string // local directory for the fallback tier (default ./uploads)
}

// ChecksConfig holds the tunable validation thresholds. Defaults are loaded
// from the embedded checks.yaml so they ship with the binary.
type ChecksConfig struct {
	Checks Checks `yaml:"checks"`
}

type Checks struct {
	MinWidth            int     `yaml:"min_width"`
	MinHeight           int     `yaml:"min_height"`
	SharpnessThreshold  float64 `yaml:"sharpness_threshold"`
	FaceMinArea         float64 `yaml:"face_min_area"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	RecentWindow        int     `yaml:"recent_window"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var checks ChecksConfig
	if err := yaml.Unmarshal(checksYAML, &checks); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded checks.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    envString("S3_BUCKET", "photogate"),
			Region:    envString("S3_REGION", "us-east-1"),
			UseSSL:    os.Getenv("S3_USE_SSL") != "false",
		},
		FaceAPI: FaceAPIConfig{
			URL:    os.Getenv("FACE_API_URL"),
			APIKey: os.Getenv("FACE_API_KEY"),
		},
		Storage: StorageConfig{
			UploadDir: envString("UPLOAD_DIR", "uploads"),
		},
		Checks: checks,
	}
}
