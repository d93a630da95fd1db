package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

var (
	housingSources sourceFlags
	housingPrefs   domain.HousingPreferences
	housingJSON    bool
)

var housingCmd = &cobra.Command{
	Use:   "housing",
	Short: "Plan campus housing from your preferences",
	Long: `Recommends housing options and an application checklist from the
knowledge base. A knowledge base is required.

Example:
  genie housing --defaults --budget "lowest cost" --privacy "private bathroom" --stay "two semesters"`,
	Args: cobra.NoArgs,
	RunE: runHousing,
}

func init() {
	addSourceFlags(housingCmd, &housingSources)
	housingCmd.Flags().StringVar(&housingPrefs.Budget, "budget", "", "budget leaning (e.g. lowest cost)")
	housingCmd.Flags().StringVar(&housingPrefs.Privacy, "privacy", "", "room and bathroom preference")
	housingCmd.Flags().StringVar(&housingPrefs.StayTerm, "stay", "", "expected length of stay")
	housingCmd.Flags().BoolVar(&housingJSON, "json", false, "output the plan as JSON")
	rootCmd.AddCommand(housingCmd)
}

func runHousing(cmd *cobra.Command, _ []string) error {
	if housingSources.empty() {
		return errors.New("housing needs a knowledge base: use --defaults, --file, --url or --manifest")
	}
	svc, err := services()
	if err != nil {
		return err
	}
	if _, err := buildFromFlags(cmd.Context(), svc, &housingSources, cmd.ErrOrStderr()); err != nil {
		return err
	}

	plan, err := svc.Housing.Plan(cmd.Context(), svc.Session, housingPrefs)
	if err != nil {
		return fmt.Errorf("housing plan failed: %w", err)
	}

	if housingJSON {
		return outputAnswerJSON(cmd, plan)
	}
	printAnswer(cmd.OutOrStdout(), plan)
	return nil
}
