// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Configuration is built from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file: $DASHBOARD_CONFIG, config.yaml or configs/config.yaml
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// Variables are namespaced with DASHBOARD_ and follow the struct layout:
//
//	DASHBOARD_SERVER_PORT=8080
//	DASHBOARD_SOURCE_URL=https://example.org/stations.csv
//	DASHBOARD_SOURCE_FILE=data/stations.xlsx
//	DASHBOARD_SOURCE_SPREADSHEET_ID=1AbC...
//	DASHBOARD_SOURCE_REFRESH_INTERVAL=15m
//	DASHBOARD_LOGGING_LEVEL=debug
//	DASHBOARD_TELEMETRY_TRACE_EXPORTER=stdout
//
// Load validates the result and returns an error describing the first
// invalid setting.
package config
