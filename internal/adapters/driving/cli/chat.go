package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

var chatSources sourceFlags

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Starts a question and answer loop on standard input.

Commands:
  /up, /down   rate the last answer
  /sources     list the indexed sources
  /history     show the conversation
  /clear       clear the conversation
  /examples    show example questions
  /quit        leave the chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	addSourceFlags(chatCmd, &chatSources)
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	svc, err := services()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	report, err := buildFromFlags(cmd.Context(), svc, &chatSources, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if report != nil {
		printReport(out, report)
	} else {
		fmt.Fprintln(out, "No knowledge base: answers are not grounded on documents.")
	}
	fmt.Fprintln(out, "Type a question, /examples for ideas or /quit to leave.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := chatCommand(cmd, svc, line); quit {
				return nil
			}
			continue
		}

		answer, err := svc.Answers.Answer(cmd.Context(), svc.Session, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printAnswer(out, answer)
	}
}

// chatCommand runs a slash command and reports whether the chat should end.
func chatCommand(cmd *cobra.Command, svc *Services, line string) bool {
	out := cmd.OutOrStdout()
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/quit", "/exit":
		return true
	case "/up":
		rate(cmd, svc, domain.FeedbackUp)
	case "/down":
		rate(cmd, svc, domain.FeedbackDown)
	case "/sources":
		printStats(out, svc.Knowledge.Sources(svc.Session))
	case "/history":
		printHistory(out, svc.Session.History())
	case "/clear":
		svc.Session.ClearHistory()
		fmt.Fprintln(out, "Conversation cleared.")
	case "/examples":
		printExamples(out)
	default:
		fmt.Fprintf(out, "unknown command %s\n", line)
	}
	return false
}

func rate(cmd *cobra.Command, svc *Services, label domain.FeedbackLabel) {
	out := cmd.OutOrStdout()
	if _, err := svc.Feedback.Record(cmd.Context(), svc.Session, label); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(out, "Thanks for the feedback.")
}

func printHistory(out io.Writer, turns []domain.ChatTurn) {
	if len(turns) == 0 {
		fmt.Fprintln(out, "No messages yet.")
		return
	}
	for _, t := range turns {
		prefix := "you"
		if t.Role == domain.RoleAssistant {
			prefix = "genie"
		}
		if t.Failed {
			prefix += " (failed)"
		}
		fmt.Fprintf(out, "%s: %s\n", prefix, t.Content)
	}
}
