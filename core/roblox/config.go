package roblox

// Config holds configuration for the Roblox web API client.
type Config struct {
	// GroupsURL is the base URL of the groups API.
	GroupsURL string `mapstructure:"groups_url" default:"https://groups.roblox.com"`
	// UsersURL is the base URL of the users API.
	UsersURL string `mapstructure:"users_url" default:"https://users.roblox.com"`
	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// RequestsPerSecond is the sustained request rate across all endpoints.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"5"`
	// Burst is the number of requests allowed above the sustained rate.
	Burst int `mapstructure:"burst" default:"10"`
	// CacheTTLSeconds is how long a user's group roles are reused. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
}
