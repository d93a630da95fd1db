// Package cli provides the genie command-line interface.
package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services are the core services commands run against.
type Services struct {
	Knowledge driving.KnowledgeBaseService
	Answers   driving.AnswerService
	Housing   driving.HousingService
	Feedback  driving.FeedbackService
	Session   *session.Session

	// Settings are the resolved settings the services were built from.
	Settings domain.Settings

	// Metrics serves the Prometheus exposition. May be nil.
	Metrics http.Handler

	// Warnings lists backends that were unavailable at start-up.
	Warnings []string
}

// Factory builds the services from resolved settings.
// The returned function releases them.
type Factory func(settings domain.Settings) (*Services, func() error, error)

// FlagBinder lets command-line flags override configuration keys.
type FlagBinder interface {
	BindFlag(key string, flag *pflag.Flag) error
}

// Config holds the dependencies injected by main.
type Config struct {
	Version  string
	Settings driving.SettingsService
	Factory  Factory
	Flags    FlagBinder
}

var (
	settingsService driving.SettingsService
	factory         Factory

	current      *Services
	closeCurrent func() error
)

var rootCmd = &cobra.Command{
	Use:   "genie",
	Short: "NTU campus knowledge assistant",
	Long: `Campus Genie answers questions about NTU housing, visas and campus life
from a knowledge base built out of local files and web pages.

Build a knowledge base with --file, --url or --defaults, then ask questions,
chat, plan housing, or serve the same pipeline over HTTP and MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// flagBindings maps persistent flags to the configuration keys they override.
var flagBindings = map[string]string{
	"model":       "llm.model",
	"rerank":      "rag.rerank",
	"top-k":       "rag.retrieval_k",
	"feedback-db": "feedback.path",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.String("model", domain.DefaultLLMModel, "LLM model name")
	pf.Bool("rerank", false, "rerank retrieved chunks before generation")
	pf.Int("top-k", domain.DefaultRetrievalK, "number of chunks to retrieve")
	pf.String("feedback-db", "", `feedback database path ("memory" keeps it in memory)`)
}

// Configure injects the services used by commands.
func Configure(cfg Config) error {
	if cfg.Version != "" {
		version = cfg.Version
	}
	settingsService = cfg.Settings
	factory = cfg.Factory
	if cfg.Flags == nil {
		return nil
	}
	for name, key := range flagBindings {
		if err := cfg.Flags.BindFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	if err := cfg.Flags.BindFlag("server.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		return fmt.Errorf("bind --addr: %w", err)
	}
	return nil
}

// Execute runs the root command and releases any services it started.
func Execute() error {
	defer func() {
		if err := closeServices(); err != nil {
			logger.Warn("closing services: %v", err)
		}
	}()
	return rootCmd.Execute()
}

// services resolves settings and builds the services once per process.
func services() (*Services, error) {
	if current != nil {
		return current, nil
	}
	if settingsService == nil || factory == nil {
		return nil, errors.New("services not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	svc, closeFn, err := factory(*settings)
	if err != nil {
		return nil, err
	}
	current, closeCurrent = svc, closeFn
	return current, nil
}

func closeServices() error {
	if closeCurrent == nil {
		current = nil
		return nil
	}
	err := closeCurrent()
	current, closeCurrent = nil, nil
	return err
}
