// Command genie answers NTU campus questions from a retrieval-augmented
// knowledge base.
package main

import (
	"fmt"
	"os"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/config/file"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/config/layered"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/cli"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/app"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/services"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run() error {
	fileStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	store, err := layered.New(fileStore, services.SettingKeys())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}

	factory := func(settings domain.Settings) (*cli.Services, func() error, error) {
		a, err := app.New(settings, prompts)
		if err != nil {
			return nil, nil, err
		}
		return &cli.Services{
			Knowledge: a.Services.Knowledge,
			Answers:   a.Services.Answers,
			Housing:   a.Services.Housing,
			Feedback:  a.Services.Feedback,
			Session:   a.Session,
			Settings:  a.Settings,
			Metrics:   a.Metrics.Handler(),
			Warnings:  a.Warnings,
		}, a.Close, nil
	}

	if err := cli.Configure(cli.Config{
		Version:  version,
		Settings: services.NewSettingsService(store),
		Factory:  factory,
		Flags:    store,
	}); err != nil {
		return err
	}
	return cli.Execute()
}
