package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"log/slog"

	"github.com/gofrs/flock"

	"shorepull/internal/config"
	"shorepull/internal/discovery"
	"shorepull/internal/enrich"
	"shorepull/internal/freespace"
	"shorepull/internal/inventory"
	"shorepull/internal/logging"
	"shorepull/internal/pull"
	"shorepull/internal/routing"
	"shorepull/internal/services/archive"
	"shorepull/internal/services/checksum"
	"shorepull/internal/services/runner"
	"shorepull/internal/services/rvdata"
	"shorepull/internal/services/sftp"
	"shorepull/internal/validation"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// acquireLock takes the single-instance lock shared by pull and sort, so a
// scheduled run and a manual run never interleave on the staging directory.
func (c *commandContext) acquireLock() (*flock.Flock, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "shorepull.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another shorepull run holds %s", lock.Path())
	}
	return lock, nil
}

func (c *commandContext) openStore() (*inventory.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return inventory.Open(cfg)
}

func (c *commandContext) newRunner(cfg *config.Config) *runner.Runner {
	return runner.New(cfg.Transfer.RetryAttempts, cfg.RetryDelay(), cfg.CommandTimeout())
}

func (c *commandContext) newTransport(cfg *config.Config, logger *slog.Logger) (*sftp.Client, error) {
	return sftp.New(sftp.EndpointFromConfig(cfg), cfg.SftpBinary(), c.newRunner(cfg), logger)
}

func (c *commandContext) buildOrchestrator(store *inventory.Store, stagingDir string) (*pull.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	transport, err := c.newTransport(cfg, logger)
	if err != nil {
		return nil, err
	}

	engine := discovery.NewEngine(transport, store, cfg.Remote.Root, cfg.CutoffDate(), logger)
	metadata := rvdata.NewClient(cfg.Metadata.BaseURL, cfg.MetadataTimeout(), http.DefaultClient)
	enricher := enrich.NewEnricher(metadata, store, logger)

	return pull.New(
		engine,
		enricher,
		store,
		transport,
		freespace.StatfsProber{},
		stagingDir,
		cfg.CushionBytes(),
		logger,
	), nil
}

// stagingDirArg resolves the optional positional staging path, falling back
// to the configured staging directory.
func (c *commandContext) stagingDirArg(args []string) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return cfg.Paths.StagingDir, nil
	}
	return config.ExpandPath(args[0])
}

func (c *commandContext) buildValidator() (*validation.Engine, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return validation.NewEngine(checksum.MD5{}, logger), nil
}

func (c *commandContext) buildRouter(store *inventory.Store) (*routing.Router, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	run := c.newRunner(cfg)
	extractor, err := archive.NewTarExtractor(cfg.TarBinary(), run)
	if err != nil {
		return nil, err
	}
	syncer, err := archive.NewRsyncSynchronizer(cfg.RsyncBinary(), run)
	if err != nil {
		return nil, err
	}

	return routing.NewRouter(
		store,
		routing.DefaultRules(cfg.Landing),
		freespace.StatfsProber{},
		extractor,
		syncer,
		cfg.CushionBytes(),
		logger,
	), nil
}
