package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/flagx"
)

var knownFlags = []string{
	"-a", "-p", "-d", "-k", "-w", "-l", "-t", "-z", "-s", "-j",
	"-u", "-P", "-b", "-g", "-e", "-r", "-v",
}

var boolFlags = []string{"-v"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-p string   route prefix (base path)
//	-d string   PostgreSQL DSN
//	-k string   OpenWeatherMap API key
//	-w string   weather API base URL
//	-l string   weather location (city)
//	-t int      weather API timeout, seconds (0 = none)
//	-z string   timezone (IANA name)
//	-s string   cron expression of the daily weather job
//	-j int      daily job timeout, seconds
//	-u string   S3 root user
//	-P string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-r int      archive link validity, minutes
//	-v          debug logging
//
// os.Args is filtered through flagx.FilterArgs first so -c/-config and
// unknown flags do not break parsing. A value flag given without a value is
// ignored rather than taking the next flag as its value.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags, boolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.BasePath, "p", config.BasePath, "route prefix")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.WeatherAPIKey, "k", config.WeatherAPIKey, "OpenWeatherMap API key")
	fs.StringVar(&config.WeatherBaseURL, "w", config.WeatherBaseURL, "weather API base URL")
	fs.StringVar(&config.WeatherLocation, "l", config.WeatherLocation, "weather location")
	weatherTimeout := fs.Int("t", int(config.WeatherTimeout.Seconds()), "weather API timeout (in seconds, 0 = none)")
	fs.StringVar(&config.Timezone, "z", config.Timezone, "timezone")
	fs.StringVar(&config.ScheduleCron, "s", config.ScheduleCron, "daily weather job cron expression")
	jobTimeout := fs.Int("j", int(config.JobTimeout.Seconds()), "daily weather job timeout (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "P", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	archiveTTL := fs.Int("r", int(config.ArchiveLinkTTL.Minutes()), "archive link validity (in minutes)")

	fs.BoolVar(&config.Debug, "v", config.Debug, "debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations are only touched when given, so sub-second values from
	// earlier layers survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.WeatherTimeout = time.Duration(*weatherTimeout) * time.Second
		case "j":
			config.JobTimeout = time.Duration(*jobTimeout) * time.Second
		case "r":
			config.ArchiveLinkTTL = time.Duration(*archiveTTL) * time.Minute
		}
	})
}
