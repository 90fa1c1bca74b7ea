package config

import (
	"encoding/json"
	"os"

	"github.com/image-cloud/api/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
// Absent fields keep their previous (default) values.
type JsonConfig struct {
	EndpointAddr   *string `json:"endpoint_addr"`
	PublicBaseURL  *string `json:"public_base_url"`
	DatabaseDSN    *string `json:"database_dsn"`
	DefaultQuota   *int64  `json:"default_quota"`
	ReadTimeout    *string `json:"read_timeout"`
	WriteTimeout   *string `json:"write_timeout"`
	S3RootUser     *string `json:"s3_root_user"`
	S3RootPassword *string `json:"s3_root_password"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; when
// neither is set, no JSON file is loaded. An unreadable or invalid file
// panics: the process must not start on a half-applied configuration.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.PublicBaseURL != nil {
		config.PublicBaseURL = *c.PublicBaseURL
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.DefaultQuota != nil {
		config.DefaultQuota = *c.DefaultQuota
	}
	if c.ReadTimeout != nil {
		config.ReadTimeout = parseDuration(*c.ReadTimeout)
	}
	if c.WriteTimeout != nil {
		config.WriteTimeout = parseDuration(*c.WriteTimeout)
	}
	if c.S3RootUser != nil {
		config.S3RootUser = *c.S3RootUser
	}
	if c.S3RootPassword != nil {
		config.S3RootPassword = *c.S3RootPassword
	}
	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.S3Region != nil {
		config.S3Region = *c.S3Region
	}
	if c.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *c.S3BaseEndpoint
	}
}
