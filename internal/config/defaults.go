package config

const (
	defaultDataDir               = "~/.local/share/shorepull/data"
	defaultStagingDir            = "~/.local/share/shorepull/staging"
	defaultLogDir                = "~/.local/share/shorepull/logs"
	defaultRemotePort            = 22
	defaultMetadataBaseURL       = "https://service.rvdata.us"
	defaultMetadataTimeout       = 30
	defaultCushionGiB            = 1024
	defaultRetryAttempts         = 5
	defaultRetryDelaySeconds     = 1
	defaultCommandTimeoutSeconds = 5000
	defaultCutoffDate            = "2021-01-01"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Remote: Remote{
			Port: defaultRemotePort,
		},
		Metadata: Metadata{
			BaseURL:        defaultMetadataBaseURL,
			TimeoutSeconds: defaultMetadataTimeout,
		},
		Transfer: Transfer{
			CushionGiB:            defaultCushionGiB,
			RetryAttempts:         defaultRetryAttempts,
			RetryDelaySeconds:     defaultRetryDelaySeconds,
			CommandTimeoutSeconds: defaultCommandTimeoutSeconds,
		},
		Discovery: Discovery{
			CutoffDate: defaultCutoffDate,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
