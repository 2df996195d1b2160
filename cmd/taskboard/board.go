package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/filter"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/store/remote"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	backend    string
	logLevel   string
}

func (o *globalOptions) bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", model.DefaultConfigPath(), "Config file path")
	flags.StringVarP(&o.backend, "backend", "b", "", "Storage backend (sqlite, memory, remote)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads the config file and applies flag overrides.
func (o *globalOptions) loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.backend != "" {
		switch o.backend {
		case model.BackendSQLite, model.BackendMemory, model.BackendRemote:
			cfg.Backend = o.backend
		default:
			return nil, fmt.Errorf("unknown backend %q", o.backend)
		}
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// board is everything a command needs to talk to the task store.
type board struct {
	cfg        *model.AppConfig
	logger     *log.Logger
	backend    store.Backend
	categories *service.CategoryService
	tasks      *service.TaskService
	templates  *service.TemplateService
	closers    []io.Closer
}

// openBoard loads config, opens the logger at logPath and connects the
// configured backend.
func openBoard(o *globalOptions, logPath func(*model.AppConfig) string) (*board, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.Open(cfg.Log.Level, logPath(cfg))
	if err != nil {
		return nil, err
	}
	rt := &board{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	backend, err := openBackend(cfg, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.backend = backend
	rt.closers = append(rt.closers, backend)

	rt.templates = service.NewTemplateService(backend, logger)
	rt.tasks = service.NewTaskService(backend, rt.templates, logger)
	rt.categories = service.NewCategoryService(backend, logger)
	return rt, nil
}

// Close releases the backend first, then the log file.
func (b *board) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openBackend(cfg *model.AppConfig, logger *log.Logger) (store.Backend, error) {
	switch cfg.Backend {
	case model.BackendMemory:
		logger.Info("using in-memory backend")
		return store.NewMemoryStore(), nil

	case model.BackendRemote:
		token := ""
		creds, err := credential.Open()
		if err != nil {
			logger.Warn("keyring unavailable, connecting without token", "err", err)
		} else if token, err = creds.APIToken(); err != nil {
			logger.Warn("reading API token", "err", err)
		}
		timeout := time.Duration(cfg.Remote.TimeoutSec) * time.Second
		logger.Info("using remote backend", "url", cfg.Remote.BaseURL)
		client := remote.NewClient(cfg.Remote.BaseURL, token, remote.WithTimeout(timeout))
		return remote.NewBackend(client), nil

	default:
		path := cfg.Database.Path
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		logger.Info("using sqlite backend", "path", path)
		return store.NewSQLiteStore(path)
	}
}

// defaultSort resolves the configured sort key, falling back to due date.
func defaultSort(name string) filter.SortKey {
	for _, k := range filter.SortKeys {
		if string(k) == name {
			return k
		}
	}
	return filter.SortDueDate
}

// tuiLogPath keeps logs off the terminal while the TUI owns it.
func tuiLogPath(cfg *model.AppConfig) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return filepath.Join(model.ConfigDir(), "taskboard.log")
}

func configuredLogPath(cfg *model.AppConfig) string {
	return cfg.Log.File
}
