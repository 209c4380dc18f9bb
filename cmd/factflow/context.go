package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"factflow/internal/api"
	"factflow/internal/config"
	"factflow/internal/daemonrun"
	"factflow/internal/logging"
	"factflow/internal/store"
	"factflow/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	runtimeOnce sync.Once
	store       *store.Store
	engine      *workflow.Engine
	items       *api.ItemService
	runtimeErr  error
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
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// runtime opens the store and engine once per invocation. Engine logs go to
// stderr at warn level so command output stays clean.
func (c *commandContext) runtime(stderr io.Writer) (*api.ItemService, error) {
	c.runtimeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.runtimeErr = err
			return
		}
		logger, err := cliLogger(cfg, stderr)
		if err != nil {
			c.runtimeErr = err
			return
		}
		st, err := store.Open(cfg)
		if err != nil {
			c.runtimeErr = fmt.Errorf("open store: %w", err)
			return
		}
		engine, err := daemonrun.NewEngine(cfg, st, logger)
		if err != nil {
			st.Close()
			c.runtimeErr = err
			return
		}
		c.store = st
		c.engine = engine
		c.items = api.NewItemService(st, engine)
	})
	return c.items, c.runtimeErr
}

func (c *commandContext) storeFor(cmd *cobra.Command) (*store.Store, error) {
	if _, err := c.runtime(cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	return c.store, nil
}

func (c *commandContext) close() {
	if c.store != nil {
		c.store.Close()
		c.store = nil
	}
}

func cliLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  "warn",
		Format: cfg.Logging.Format,
		Writer: stderr,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
