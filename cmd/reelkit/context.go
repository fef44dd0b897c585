package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reelkit/internal/capcache"
	"reelkit/internal/config"
	"reelkit/internal/deps"
	"reelkit/internal/ffmpeg"
	"reelkit/internal/logging"
	"reelkit/internal/services"
)

type commandContext struct {
	configFlag *string
	sessionID  string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	cacheOnce sync.Once
	cache     *capcache.Cache
	cacheErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		sessionID:  uuid.NewString(),
	}
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// ensureLogger builds the session logger and prunes expired log files once
// per invocation.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, c.sessionID)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: config.LogFilePattern,
			Exclude: []string{cfg.LogPath(time.Now())},
		})
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// runner returns an ffmpeg runner wired to the configured binaries.
func (c *commandContext) runner() (ffmpeg.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return ffmpeg.Runner{}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return ffmpeg.Runner{}, err
	}
	return ffmpeg.Runner{
		FFmpeg:  cfg.FFmpegBinary(),
		FFprobe: deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.FFprobeBinary()),
		Timeout: cfg.ToolTimeout(),
		Logger:  logger,
	}, nil
}

// capabilityCache opens the cache on first use. It returns nil without error
// when caching is disabled.
func (c *commandContext) capabilityCache() (*capcache.Cache, error) {
	c.cacheOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.cacheErr = err
			return
		}
		if !cfg.Cache.Enabled {
			return
		}
		logger, err := c.ensureLogger()
		if err != nil {
			c.cacheErr = err
			return
		}
		cache, err := capcache.Open(cfg.CacheDatabasePath(), cfg.CacheLockPath(), capcache.Options{
			TTL:    cfg.CacheTTL(),
			Logger: logger,
		})
		if err != nil {
			c.cacheErr = services.Wrap(services.ErrConfiguration, "capcache", "open", cfg.CacheDatabasePath(), err)
			return
		}
		c.cache = cache
	})
	return c.cache, c.cacheErr
}

// commandScope returns the command's context tagged with session and command
// names so log lines carry them.
func (c *commandContext) commandScope(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithSessionID(ctx, c.sessionID)
	return services.WithCommand(ctx, cmd.Name())
}

func (c *commandContext) close() error {
	if c.cache == nil {
		return nil
	}
	cache := c.cache
	c.cache = nil
	if err := cache.Close(); err != nil {
		return fmt.Errorf("close capability cache: %w", err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
