package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/weatherdiary/internal/flagx"
	"github.com/dmitrijs2005/weatherdiary/internal/timex"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for file decoding. Durations accept "15m" style
// strings or integer nanoseconds. Only keys present in the file (non-zero
// values) override what is already set.
type FileConfig struct {
	EndpointAddr    string         `json:"endpoint_addr" yaml:"endpoint_addr"`
	BasePath        string         `json:"base_path" yaml:"base_path"`
	DatabaseDSN     string         `json:"database_dsn" yaml:"database_dsn"`
	WeatherAPIKey   string         `json:"weather_api_key" yaml:"weather_api_key"`
	WeatherBaseURL  string         `json:"weather_base_url" yaml:"weather_base_url"`
	WeatherLocation string         `json:"weather_location" yaml:"weather_location"`
	WeatherTimeout  timex.Duration `json:"weather_timeout" yaml:"weather_timeout"`
	Timezone        string         `json:"timezone" yaml:"timezone"`
	ScheduleCron    string         `json:"schedule_cron" yaml:"schedule_cron"`
	JobTimeout      timex.Duration `json:"job_timeout" yaml:"job_timeout"`
	S3RootUser      string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region        string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	ArchiveLinkTTL  timex.Duration `json:"archive_link_ttl" yaml:"archive_link_ttl"`
	Debug           bool           `json:"debug" yaml:"debug"`
}

// parseFile loads the file named by -c/-config into config. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON. Without the
// flag nothing happens; an unreadable or invalid file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddr, fc.EndpointAddr)
	setString(&c.BasePath, fc.BasePath)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.WeatherAPIKey, fc.WeatherAPIKey)
	setString(&c.WeatherBaseURL, fc.WeatherBaseURL)
	setString(&c.WeatherLocation, fc.WeatherLocation)
	setString(&c.Timezone, fc.Timezone)
	setString(&c.ScheduleCron, fc.ScheduleCron)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)

	if fc.WeatherTimeout.Duration != 0 {
		c.WeatherTimeout = fc.WeatherTimeout.Duration
	}
	if fc.JobTimeout.Duration != 0 {
		c.JobTimeout = fc.JobTimeout.Duration
	}
	if fc.ArchiveLinkTTL.Duration != 0 {
		c.ArchiveLinkTTL = fc.ArchiveLinkTTL.Duration
	}
	if fc.Debug {
		c.Debug = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
