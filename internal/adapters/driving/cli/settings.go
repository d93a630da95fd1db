package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the persisted settings in ~/.genie/config.toml.

Environment variables (GENIE_RAG_CHUNK_SIZE, DEEPSEEK_API_KEY) and flags
override the file; 'settings show' prints the resolved values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long: `Set one setting. Lists are comma separated and durations use Go
syntax (20s, 1m). Values that leave the settings invalid are rejected.

Examples:
  genie settings set rag.chunk_size 800
  genie settings set rag.rerank true
  genie settings set sources.urls https://www.ntu.edu.sg/life-at-ntu/accommodation`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [llm|embedding|rerank]",
	Short: "Store an API key without echoing it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsSetKey,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	entries, err := settingsService.Entries()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tDESCRIPTION")
	for _, e := range entries {
		value := e.Value
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, value, e.Help)
	}
	return w.Flush()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

// apiKeySettings maps set-key targets to their configuration keys.
//
//nolint:gosec // G101: These are key names, not credentials.
var apiKeySettings = map[string]string{
	"llm":       "llm.api_key",
	"embedding": "embedding.api_key",
	"rerank":    "rerank.api_key",
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	target := "llm"
	if len(args) == 1 {
		target = strings.ToLower(args[0])
	}
	key, ok := apiKeySettings[target]
	if !ok {
		return fmt.Errorf("unknown key target %q: use llm, embedding or rerank", target)
	}

	cmd.Printf("Enter %s API key: ", target)
	secret := readPassword(cmd.InOrStdin())
	cmd.Println()
	if secret == "" {
		return errors.New("no key entered")
	}

	if err := settingsService.Set(key, secret); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}
	cmd.Printf("Stored %s (%s)\n", key, maskAPIKey(secret))
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	// Read without echo when attached to a terminal
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
