// Package cli wires configuration, logging and the service layer into the
// taskboard commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/session"
)

var (
	configPath string
	baseURL    string
)

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the terminal UI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskboard",
		Short: "Projetos e quadro Kanban no terminal",
		Long: `taskboard is a terminal client for the task-tracker API.

Without a subcommand it opens the interactive board; the subcommands
cover sign-in, scripting and an in-memory backend for demos.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "configuration file")
	root.PersistentFlags().StringVar(&baseURL, "api", "", "API base URL (overrides api.base_url)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newBoardCmd(),
		newStatsCmd(),
		newMoveCmd(),
		newProjectsCmd(),
		newMockServerCmd(),
	)
	return root
}

// Execute runs the root command and reports a failure on stderr.
func Execute(version string) error {
	root := NewRootCmd()
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		return err
	}
	return nil
}

// env is what most commands need: the configuration, the persisted
// session and a client bound to it.
type env struct {
	cfg     *model.AppConfig
	session *session.Session
	client  *gateway.Client
	logFile *os.File
}

func (e *env) Close() {
	if e.logFile != nil {
		e.logFile.Close()
	}
}

// loadEnv reads the configuration, sets up logging and restores the
// session from the keyring.
func loadEnv() (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	e := &env{cfg: cfg}
	e.logFile, err = setupLogging(cfg.Log)
	if err != nil {
		return nil, err
	}

	creds, err := credential.Open()
	if err != nil {
		e.Close()
		return nil, err
	}
	e.session = session.New(credential.NewTokenStore(creds))
	if err := e.session.Restore(); err != nil {
		log.WithError(err).Warn("restoring session")
	}

	e.client = gateway.NewClient(cfg.API.BaseURL, e.session,
		gateway.WithTimeout(time.Duration(cfg.API.TimeoutSec)*time.Second))
	return e, nil
}

// setupLogging sends logrus output to the configured file. The terminal
// belongs to the UI, so nothing is logged to stderr. DEBUG=1 forces the
// debug level.
func setupLogging(cfg model.LogConfig) (*os.File, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Level, err)
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}

var errNotSignedIn = errors.New("não autenticado: execute 'taskboard login'")

// requireSession fails fast when no valid token is stored.
func (e *env) requireSession() error {
	if !e.session.IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}
