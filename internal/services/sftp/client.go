package sftp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"log/slog"

	"shorepull/internal/config"
	"shorepull/internal/logging"
	"shorepull/internal/services"
	"shorepull/internal/services/runner"
)

// Endpoint identifies the archive server. It is always built from
// configuration and passed in explicitly; the client never inspects the
// execution environment to choose a server.
type Endpoint struct {
	Host         string
	User         string
	Port         int
	IdentityFile string
}

// EndpointFromConfig builds the endpoint from the [remote] config section.
func EndpointFromConfig(cfg *config.Config) Endpoint {
	return Endpoint{
		Host:         cfg.Remote.Host,
		User:         cfg.Remote.User,
		Port:         cfg.Remote.Port,
		IdentityFile: cfg.Remote.IdentityFile,
	}
}

// Client wraps the sftp binary for directory listings and file retrieval.
type Client struct {
	endpoint Endpoint
	binary   string
	run      *runner.Runner
	logger   *slog.Logger
}

// New constructs an sftp transport client.
func New(endpoint Endpoint, binary string, run *runner.Runner, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(endpoint.Host) == "" {
		return nil, errors.New("sftp endpoint host required")
	}
	if strings.TrimSpace(binary) == "" {
		return nil, errors.New("sftp binary required")
	}
	if run == nil {
		return nil, errors.New("sftp runner required")
	}
	return &Client{
		endpoint: endpoint,
		binary:   binary,
		run:      run,
		logger:   logging.NewComponentLogger(logger, "sftp"),
	}, nil
}

// List returns the entry names under a remote directory. A path that matches
// nothing on the server yields an empty listing, not an error.
func (c *Client) List(ctx context.Context, remotePath string) ([]string, error) {
	input := fmt.Sprintf("ls -l %s\n", remotePath)
	result, err := c.run.Run(ctx, c.binary, c.args(), input)
	if err != nil {
		if matchedNothing(result) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrTransport, "transport", "list", remotePath, err)
	}
	if matchedNothing(result) {
		return nil, nil
	}

	names := parseListing(result.Stdout)
	c.logger.DebugContext(ctx, "listed remote directory",
		logging.String("path", remotePath),
		logging.Int("entries", len(names)),
	)
	return names, nil
}

// Fetch retrieves a remote file into a local directory and confirms it landed.
func (c *Client) Fetch(ctx context.Context, remotePath, localDir string) error {
	dir, name := path.Split(remotePath)
	dir = strings.TrimSuffix(dir, "/")
	if name == "" {
		return services.Wrap(services.ErrTransport, "transport", "fetch", remotePath, errors.New("remote path has no file component"))
	}

	input := fmt.Sprintf("cd %s\nget %s %s\nbye\n", dir, name, localDir)
	c.logger.InfoContext(ctx, "fetching package", logging.String("remote", remotePath))
	if _, err := c.run.Run(ctx, c.binary, c.args(), input); err != nil {
		return services.Wrap(services.ErrTransport, "transport", "fetch", remotePath, err)
	}

	landed := filepath.Join(localDir, name)
	if _, err := os.Stat(landed); err != nil {
		return services.Wrap(services.ErrTransport, "transport", "fetch", remotePath,
			fmt.Errorf("transfer reported success but %s is missing: %w", landed, err))
	}
	return nil
}

func (c *Client) args() []string {
	args := []string{"-P", strconv.Itoa(c.endpoint.Port)}
	if c.endpoint.IdentityFile != "" {
		args = append(args, "-i", c.endpoint.IdentityFile)
	}
	target := c.endpoint.Host
	if c.endpoint.User != "" {
		target = c.endpoint.User + "@" + c.endpoint.Host
	}
	return append(args, target)
}

// parseListing extracts the trailing name token from each `ls -l` output
// line, skipping the echoed command on the first line.
func parseListing(stdout string) []string {
	lines := strings.Split(stdout, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[len(fields)-1])
	}
	return names
}

func matchedNothing(result runner.Result) bool {
	return strings.Contains(result.Stderr, "matched no objects") ||
		strings.Contains(result.Stdout, "matched no objects")
}
