// Package config provides centralized configuration management for the
// dashboard. It loads configuration from multiple sources, validates it, and
// exposes a type-safe struct used throughout the application.
//
// # Configuration Sources
//
// Configuration is resolved in the following order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// The file is taken from ECOM_CONFIG_FILE, or else the first of
// config.yaml, configs/config.yaml and ../configs/config.yaml that exists.
//
// # Environment Variables
//
// All environment variables follow the pattern ECOM_<SECTION>_<FIELD>:
//
//	ECOM_SERVER_PORT=8080
//	ECOM_LOGGING_LEVEL=debug
//	ECOM_DATASETS_ITEMS=/srv/data/items_clean.csv
//	ECOM_DATASETS_FETCH_TIMEOUT=90s
//	ECOM_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Dataset Sources
//
// Each of the seven tables has its own location. Locations may be http(s)
// URLs, file:// URLs or plain paths; a location ending in .xlsx is read as a
// workbook instead of CSV. The defaults point at the published cleaned CSVs.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, config.Default() returns a valid configuration that touches no
// environment or files.
package config
