package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/rest"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/loaders/filesystem"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
)

var (
	serveSources sourceFlags
	serveWatch   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serves the knowledge base over HTTP.

Routes:
  POST /kb/build         build from multipart uploads, urls and defaults
  POST /ask              answer a question
  POST /housing          plan housing from preferences
  POST /feedback         rate the last answer
  GET  /feedback/stats   feedback counts and recent ratings
  GET  /kb/sources       indexed sources
  GET  /examples         example questions
  GET  /health           liveness
  GET  /metrics          Prometheus metrics

All requests share one session. Source flags build a knowledge base
before the server starts; --watch rebuilds it when a local source changes.

Examples:
  genie serve --defaults
  genie serve -f notes/halls.md --watch --addr :9090`,
	RunE: runServe,
}

func init() {
	addSourceFlags(serveCmd, &serveSources)
	serveCmd.Flags().String("addr", domain.DefaultServerAddr, "listen address")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "rebuild when local source files change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := services()
	if err != nil {
		return err
	}
	out := cmd.ErrOrStderr()
	if report, err := buildFromFlags(ctx, svc, &serveSources, out); err != nil {
		return err
	} else if report != nil {
		printReport(out, report)
	}

	server, err := rest.NewServer(&rest.Ports{
		Knowledge: svc.Knowledge,
		Answers:   svc.Answers,
		Housing:   svc.Housing,
		Feedback:  svc.Feedback,
		Session:   svc.Session,
		Metrics:   svc.Metrics,
	})
	if err != nil {
		return err
	}

	addr := svc.Settings.Server.Addr
	if addr == "" {
		addr = domain.DefaultServerAddr
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(out, "Listening on http://%s\n", addr)
		return server.Run(gctx, addr)
	})
	if serveWatch {
		paths, err := watchedFiles(svc.Settings, &serveSources)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			logger.Warn("--watch given but no local source files to watch")
		} else {
			g.Go(func() error {
				return watchAndRebuild(gctx, svc, paths)
			})
		}
	}
	return g.Wait()
}

// watchedFiles lists the local files the build flags index.
func watchedFiles(settings domain.Settings, f *sourceFlags) ([]string, error) {
	req, err := f.request()
	if err != nil {
		return nil, err
	}
	paths := append([]string(nil), req.Files...)
	if req.UseDefaults {
		paths = append(paths, settings.Sources.DefaultFiles...)
	}
	return paths, nil
}

// watchAndRebuild rebuilds the knowledge base from the same flags each time
// a watched file changes. A failed rebuild keeps the current index.
func watchAndRebuild(ctx context.Context, svc *Services, paths []string) error {
	w := filesystem.NewWatcher(paths, 0)
	changes, err := w.Watch(ctx)
	if err != nil {
		logger.Warn("watch disabled: %v", err)
		return nil
	}
	defer w.Close()

	logger.Info("watching %d files for changes", len(paths))
	for changed := range changes {
		logger.Info("sources changed: %v; rebuilding", changed)
		req, err := serveSources.request()
		if err != nil {
			logger.Error("rebuild: %v", err)
			continue
		}
		report, err := svc.Knowledge.Build(ctx, svc.Session, req)
		if err != nil {
			logger.Error("rebuild failed, keeping the previous index: %v", err)
			continue
		}
		logger.Info("rebuilt knowledge base: %d chunks from %d documents", report.Chunks, report.Documents)
	}
	return nil
}
