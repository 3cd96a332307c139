package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"transcript-api/config"
	"transcript-api/handlers"
	"transcript-api/internal/transcript"
	"transcript-api/internal/youtube"
)

// supplierFactory builds the caption supplier for a loaded config.
type supplierFactory func(cfg *config.Config, log *logrus.Logger) handlers.TranscriptSupplier

func newYouTubeSupplier(cfg *config.Config, log *logrus.Logger) handlers.TranscriptSupplier {
	return youtube.New(
		youtube.WithBaseURL(cfg.YouTube.BaseURL),
		youtube.WithLanguages(cfg.YouTube.Languages...),
		youtube.WithTimeout(cfg.YouTube.RequestTimeout()),
		youtube.WithLogger(log),
	)
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	factory      supplierFactory

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, factory supplierFactory) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		factory:      factory,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// configPath is the file given by --config or $TRANSCRIPT_API_CONFIG.
func (c *commandContext) configPath() string {
	if path := strings.TrimSpace(*c.configFlag); path != "" {
		return path
	}
	return os.Getenv(config.EnvConfigPath)
}

// logger builds a logger for the loaded config writing to out.
func (c *commandContext) logger(out io.Writer) (*logrus.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return config.NewLogger(cfg.Logging, out)
}

func (c *commandContext) supplier(log *logrus.Logger) (handlers.TranscriptSupplier, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return c.factory(cfg, log), nil
}

func (c *commandContext) optimizer() transcript.Optimizer {
	cfg, _ := c.ensureConfig()
	if cfg == nil {
		return transcript.NewOptimizer(transcript.DefaultMinOverlapTokens)
	}
	return transcript.NewOptimizer(cfg.Optimizer.MinOverlapTokens)
}
