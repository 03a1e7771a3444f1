package config

import (
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRemote()
	c.normalizeMetadata()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Landing.WCSDDir, err = expandPath(c.Landing.WCSDDir); err != nil {
		return err
	}
	if c.Landing.MultibeamDir, err = expandPath(c.Landing.MultibeamDir); err != nil {
		return err
	}
	if c.Landing.TracklineDir, err = expandPath(c.Landing.TracklineDir); err != nil {
		return err
	}
	if c.Remote.IdentityFile != "" {
		if c.Remote.IdentityFile, err = expandPath(c.Remote.IdentityFile); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) normalizeRemote() {
	c.Remote.Host = strings.TrimSpace(c.Remote.Host)
	c.Remote.User = strings.TrimSpace(c.Remote.User)
	c.Remote.Root = strings.TrimSuffix(strings.TrimSpace(c.Remote.Root), "/")
	if c.Remote.Port <= 0 {
		c.Remote.Port = defaultRemotePort
	}
}

func (c *Config) normalizeMetadata() {
	c.Metadata.BaseURL = strings.TrimRight(strings.TrimSpace(c.Metadata.BaseURL), "/")
	if c.Metadata.TimeoutSeconds <= 0 {
		c.Metadata.TimeoutSeconds = defaultMetadataTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
