package config

const (
	defaultConfigPath            = "~/.config/factflow/config.toml"
	defaultDataDir               = "~/.local/share/factflow"
	defaultLogDir                = "~/.local/share/factflow/logs"
	defaultAPIBind               = "127.0.0.1:7490"
	defaultBusyTimeoutMS         = 5000
	defaultBusyRetryMaxElapsedMS = 2000
	defaultIdentityCacheTTL      = 5
	defaultRateLimitPerSecond    = 10.0
	defaultRateLimitBurst        = 20
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Store: Store{
			BusyTimeoutMS:         defaultBusyTimeoutMS,
			BusyRetryMaxElapsedMS: defaultBusyRetryMaxElapsedMS,
		},
		Identity: Identity{
			CacheTTLSeconds: defaultIdentityCacheTTL,
		},
		API: API{
			RateLimitPerSecond: defaultRateLimitPerSecond,
			RateLimitBurst:     defaultRateLimitBurst,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
