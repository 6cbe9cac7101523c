package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables. A .env file in the working
// directory is loaded first when present; variables already set in the
// process environment take precedence over it.
//
//	ADDRESS, BASE_PATH, DATABASE_DSN,
//	OPENWEATHER_API_KEY, WEATHER_BASE_URL, WEATHER_LOCATION, WEATHER_TIMEOUT,
//	TZ_NAME, SCHEDULE_CRON, JOB_TIMEOUT,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	ARCHIVE_LINK_TTL, LOG_DEBUG
//
// Durations use Go syntax ("30s"). Malformed values panic.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	envString(&config.EndpointAddr, "ADDRESS")
	envString(&config.BasePath, "BASE_PATH")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.WeatherAPIKey, "OPENWEATHER_API_KEY")
	envString(&config.WeatherBaseURL, "WEATHER_BASE_URL")
	envString(&config.WeatherLocation, "WEATHER_LOCATION")
	envString(&config.Timezone, "TZ_NAME")
	envString(&config.ScheduleCron, "SCHEDULE_CRON")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	envDuration(&config.WeatherTimeout, "WEATHER_TIMEOUT")
	envDuration(&config.JobTimeout, "JOB_TIMEOUT")
	envDuration(&config.ArchiveLinkTTL, "ARCHIVE_LINK_TTL")

	if v, ok := os.LookupEnv("LOG_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("invalid LOG_DEBUG: %w", err))
		}
		config.Debug = b
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("invalid %s: %w", key, err))
	}
	*dst = d
}
