package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui"
)

var tuiSources sourceFlags

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

The TUI offers a chat with the knowledge base, a housing plan form, a
sources view that can rebuild the index, and a settings editor. Source
flags build a knowledge base before the UI starts.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Ask / Select
  ctrl+u/d - Rate the last answer
  Esc      - Back
  ?        - Help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	addSourceFlags(tuiCmd, &tuiSources)
	rootCmd.AddCommand(tuiCmd)
}

// tuiRunner starts the program. Tests replace it to avoid a terminal.
var tuiRunner = func(app *tui.App) error {
	return app.Run()
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	svc, err := services()
	if err != nil {
		return err
	}
	if _, err := buildFromFlags(cmd.Context(), svc, &tuiSources, cmd.ErrOrStderr()); err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Knowledge: svc.Knowledge,
		Answers:   svc.Answers,
		Housing:   svc.Housing,
		Feedback:  svc.Feedback,
		Settings:  settingsService,
		Session:   svc.Session,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := tuiRunner(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
