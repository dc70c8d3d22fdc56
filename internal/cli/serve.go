package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"leadhunt-engine/internal/httpapi"
	"leadhunt-engine/internal/pipeline"
	"leadhunt-engine/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run workflows on the configured schedule and serve the operator API",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token := os.Getenv("LEADHUNT_SHUTDOWN_TOKEN")
	if token == "" {
		if token, err = httpapi.RandomToken(16); err != nil {
			return err
		}
	}

	var search httpapi.Pinger
	if a.search != nil {
		search = a.search
	}

	cfgVal := &atomic.Value{}
	cfgVal.Store(a.cfg)

	handler := httpapi.NewRouter(httpapi.Deps{
		Runner:        a.orch,
		Hub:           a.hub,
		Store:         a.store,
		Search:        search,
		DB:            a.store.Pool,
		CfgVal:        cfgVal,
		UserCfgPath:   a.cfgPath,
		BaseCtx:       ctx,
		ShutdownToken: token,
		Shutdown:      stop,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("engine listening", "addr", "http://"+addr)
	fmt.Fprintf(os.Stdout, "SHUTDOWN_TOKEN=%s\n", token)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		scheduler.Every(gctx, a.cfg.Schedule(), "pipeline", func(ctx context.Context) error {
			_, err := a.orch.RunAll(ctx)
			if errors.Is(err, pipeline.ErrBusy) {
				return nil
			}
			a.prune(ctx)
			return err
		})
		return nil
	})

	err = g.Wait()
	slog.Info("engine stopped")
	return err
}
