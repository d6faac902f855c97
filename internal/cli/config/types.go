// Package config provides configuration management for the healthcsv CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	// ExportPath is the Apple Health export.xml location.
	ExportPath string `koanf:"export_path"`
	// RoutesGlob matches the workout-route GPX files.
	RoutesGlob string `koanf:"routes_glob"`
	// StatePath is the run-history SQLite database.
	StatePath string `koanf:"state_path"`
	Verbose   bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultExportPath = "apple_health_export/export.xml"
	DefaultRoutesGlob = "apple_health_export/workout-routes/*.gpx"
	DefaultStateFile  = ".healthcsv/state.db"
)
