// Package config provides configuration management for rank-sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Default values live in the `default` struct tags of each
// section and are registered by reflection, so every key can be overridden with
// an environment variable named SECTION_KEY (e.g. SYNC_CONCURRENCY).
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port and API key
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO settings for the sync report archive
//   - Log: Logging level and format
//   - Discord: bot token and member paging
//   - Roblox: API base URLs, rate limit and membership cache TTL
//   - Sync: worker pool size, call timeout, progress interval and sweep schedule
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Concurrency)
package config
