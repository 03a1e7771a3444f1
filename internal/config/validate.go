package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateTransfer(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRemote() error {
	if c.Remote.Host == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/shorepull/config.toml"
		}
		return fmt.Errorf("remote.host is required; edit %s (create with 'shorepull config init')", defaultPath)
	}
	if c.Remote.Root == "" {
		return errors.New("remote.root must be set to the archive directory on the server")
	}
	if c.Remote.Port <= 0 || c.Remote.Port > 65535 {
		return fmt.Errorf("remote.port %d is out of range", c.Remote.Port)
	}
	return nil
}

func (c *Config) validateMetadata() error {
	if c.Metadata.BaseURL == "" {
		return errors.New("metadata.base_url must be set")
	}
	return nil
}

func (c *Config) validateTransfer() error {
	if c.Transfer.CushionGiB < 0 {
		return errors.New("transfer.cushion_gib must not be negative")
	}
	if c.Transfer.RetryAttempts <= 0 {
		return errors.New("transfer.retry_attempts must be at least 1")
	}
	if c.Transfer.RetryDelaySeconds < 0 {
		return errors.New("transfer.retry_delay_seconds must not be negative")
	}
	if c.Transfer.CommandTimeoutSeconds <= 0 {
		return errors.New("transfer.command_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	if _, err := time.Parse("2006-01-02", c.Discovery.CutoffDate); err != nil {
		return fmt.Errorf("discovery.cutoff_date %q must be YYYY-MM-DD: %w", c.Discovery.CutoffDate, err)
	}
	return nil
}
