package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

var (
	askSources sourceFlags
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Answers one question. When sources are given the knowledge base is built
first and the answer is grounded on it; otherwise the question goes to the
LLM without context.

Examples:
  genie ask --defaults "How do I apply for graduate housing?"
  genie ask -f data/ntu_visa.txt "What documents do I need for a Student's Pass?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	addSourceFlags(askCmd, &askSources)
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	svc, err := services()
	if err != nil {
		return err
	}
	if _, err := buildFromFlags(cmd.Context(), svc, &askSources, cmd.ErrOrStderr()); err != nil {
		return err
	}

	answer, err := svc.Answers.Answer(cmd.Context(), svc.Session, question)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	printAnswer(cmd.OutOrStdout(), answer)
	return nil
}

type answerJSON struct {
	Answer        string   `json:"answer"`
	UsedRetrieval bool     `json:"used_retrieval"`
	Sources       []string `json:"sources"`
	Warnings      []string `json:"warnings,omitempty"`
}

func outputAnswerJSON(cmd *cobra.Command, a *domain.Answer) error {
	data, err := json.MarshalIndent(answerJSON{
		Answer:        a.Text,
		UsedRetrieval: a.UsedRetrieval,
		Sources:       a.Sources,
		Warnings:      a.Warnings,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printAnswer(out io.Writer, a *domain.Answer) {
	for _, w := range a.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	fmt.Fprintln(out, a.Text)
	if !a.UsedRetrieval {
		fmt.Fprintln(out, "\n(answered without a knowledge base)")
		return
	}
	if len(a.Sources) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, s := range a.Sources {
			fmt.Fprintf(out, "  - %s\n", s)
		}
	}
}
