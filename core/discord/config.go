package discord

// Config holds configuration for the Discord bot connection.
type Config struct {
	// Token is the bot token, without the "Bot " prefix.
	Token string `mapstructure:"token" default:""`
	// PageSize is how many members are requested per page when listing a guild.
	PageSize int `mapstructure:"page_size" default:"1000"`
}
