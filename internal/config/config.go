package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Remote contains the archive server endpoint. The endpoint is always
// constructor-injected from here; it is never inferred from the execution
// environment.
type Remote struct {
	Host         string `toml:"host"`
	User         string `toml:"user"`
	Port         int    `toml:"port"`
	Root         string `toml:"root"`
	IdentityFile string `toml:"identity_file"`
}

// Metadata contains configuration for the fileset metadata service.
type Metadata struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Landing contains the destination roots packages are routed into.
type Landing struct {
	WCSDDir      string `toml:"wcsd_dir"`
	MultibeamDir string `toml:"multibeam_dir"`
	TracklineDir string `toml:"trackline_dir"`
}

// Transfer contains retry, timeout, and free-space cushion settings shared by
// every external call.
type Transfer struct {
	CushionGiB            int `toml:"cushion_gib"`
	RetryAttempts         int `toml:"retry_attempts"`
	RetryDelaySeconds     int `toml:"retry_delay_seconds"`
	CommandTimeoutSeconds int `toml:"command_timeout_seconds"`
}

// Discovery contains settings for remote date-directory discovery.
type Discovery struct {
	CutoffDate string `toml:"cutoff_date"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shorepull.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Remote    Remote    `toml:"remote"`
	Metadata  Metadata  `toml:"metadata"`
	Landing   Landing   `toml:"landing"`
	Transfer  Transfer  `toml:"transfer"`
	Discovery Discovery `toml:"discovery"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shorepull/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shorepull.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CushionBytes returns the free-space safety margin in bytes.
func (c *Config) CushionBytes() uint64 {
	return uint64(c.Transfer.CushionGiB) * 1024 * 1024 * 1024
}

// RetryDelay returns the wait between retry attempts for external calls.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Transfer.RetryDelaySeconds) * time.Second
}

// CommandTimeout returns the per-call ceiling for external commands.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Transfer.CommandTimeoutSeconds) * time.Second
}

// MetadataTimeout returns the per-request ceiling for metadata lookups.
func (c *Config) MetadataTimeout() time.Duration {
	return time.Duration(c.Metadata.TimeoutSeconds) * time.Second
}

// CutoffDate returns the parsed discovery cutoff. Validate guarantees the
// configured value parses.
func (c *Config) CutoffDate() time.Time {
	t, _ := time.Parse("2006-01-02", c.Discovery.CutoffDate)
	return t
}

// SftpBinary returns the sftp executable name.
func (c *Config) SftpBinary() string {
	return "sftp"
}

// TarBinary returns the tar executable name used at routing time.
func (c *Config) TarBinary() string {
	return "tar"
}

// RsyncBinary returns the rsync executable name used for copy-only routing.
func (c *Config) RsyncBinary() string {
	return "rsync"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
