// Package config loads gistaudit runtime configuration.
//
// It handles:
//   - Store credentials (identity and secret), which are required
//   - An optional dotenv file layered under the process environment
//   - Timeouts, log file and report tool settings
package config
