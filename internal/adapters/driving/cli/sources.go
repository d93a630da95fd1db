package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesSources sourceFlags

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List indexed or default sources",
	Long: `With source flags, builds the knowledge base and lists what was indexed.
Without them, lists the files and web pages used by --defaults.
Change those with 'genie settings set sources.files ...' and 'sources.urls'.

Examples:
  genie sources
  genie sources --defaults`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

func init() {
	addSourceFlags(sourcesCmd, &sourcesSources)
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if !sourcesSources.empty() {
		svc, err := services()
		if err != nil {
			return err
		}
		if _, err := buildFromFlags(cmd.Context(), svc, &sourcesSources, cmd.ErrOrStderr()); err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), svc.Knowledge.Sources(svc.Session))
		return nil
	}

	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Files:")
	if len(settings.Sources.DefaultFiles) == 0 {
		cmd.Println("  (none)")
	}
	for _, f := range settings.Sources.DefaultFiles {
		cmd.Printf("  - %s\n", f)
	}
	cmd.Println("Web pages:")
	if len(settings.Sources.DefaultURLs) == 0 {
		cmd.Println("  (none)")
	}
	for _, u := range settings.Sources.DefaultURLs {
		cmd.Printf("  - %s\n", u)
	}
	return nil
}
