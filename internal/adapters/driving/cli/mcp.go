package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/mcp"
)

var (
	mcpSources sourceFlags
	mcpHTTP    string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the knowledge base to MCP clients",
	Long: `Runs an MCP server with the tools build_knowledge_base, ask, retrieve
and housing_plan, and the resources genie://sources and genie://examples.

JSON-RPC goes over stdin and stdout unless --http is given, in which case
the streamable HTTP transport listens on that address. Build output always
goes to stderr.

Examples:
  genie mcp serve --defaults
  genie mcp serve --http 127.0.0.1:8081 -f notes/halls.md

Client configuration:
  {"mcpServers": {"genie": {"command": "genie", "args": ["mcp", "serve", "--defaults"]}}}`,
	RunE: runMCPServe,
}

func init() {
	addSourceFlags(mcpServeCmd, &mcpSources)
	mcpServeCmd.Flags().StringVar(&mcpHTTP, "http", "", "listen address for HTTP transport (default: stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := services()
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	if report, err := buildFromFlags(ctx, svc, &mcpSources, stderr); err != nil {
		return err
	} else if report != nil {
		printReport(stderr, report)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Knowledge: svc.Knowledge,
		Answers:   svc.Answers,
		Housing:   svc.Housing,
		Session:   svc.Session,
	})
	if err != nil {
		return err
	}

	if mcpHTTP == "" {
		return server.Run(ctx)
	}
	fmt.Fprintf(stderr, "MCP listening on http://%s\n", mcpHTTP)
	return server.RunHTTP(ctx, mcpHTTP)
}
