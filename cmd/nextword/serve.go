package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bastiangx/nextword/internal/admin"
	"github.com/bastiangx/nextword/pkg/server"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over msgpack IPC on stdin/stdout",
		Example: `
  # Serve with the configured dataset
  nextword serve

  # Serve a specific dataset with debug logs on stderr
  nextword serve --dataset data/ngrams.msgpack -d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(root, dataset, true)
			return runServe(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset file, overrides [model] dataset")
	return cmd
}

// runServe serves IPC until the input closes or ctx is cancelled. The admin
// listener, when configured, runs alongside and is shut down once IPC ends;
// it never takes the IPC server down with it. On cancellation the pending
// stdin read is abandoned.
func runServe(ctx context.Context, a *app, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if a.provider != nil {
		defer func() {
			if err := a.provider.MeterProvider.Shutdown(context.Background()); err != nil {
				log.Debugf("Shutting down meter provider: %v", err)
			}
		}()
	}

	srv := server.NewServer(a.service, a.cfg.Server, in, out, server.WithStore(a.store))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if addr := a.cfg.Admin.Addr; addr != "" {
		var metrics http.Handler
		if a.provider != nil {
			metrics = a.provider.Handler
		}
		h := admin.New(metrics, admin.DatasetChecker(a.store.Empty))
		g.Go(func() error {
			if err := admin.Serve(gctx, addr, h); err != nil {
				log.Errorf("Admin listener on %s stopped: %v", addr, err)
			}
			return nil
		})
	}

	showStartupInfo(errOut, a)

	ipcDone := make(chan error, 1)
	go func() { ipcDone <- srv.Start() }()

	var err error
	select {
	case err = <-ipcDone:
		if err != nil {
			err = fmt.Errorf("ipc server: %w", err)
		}
	case <-ctx.Done():
		log.Debug("Interrupted, shutting down")
	}
	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return err
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(w io.Writer, a *app) {
	st := a.store.Stats()
	fmt.Fprintln(w, "==========")
	fmt.Fprintln(w, " NextWord ")
	fmt.Fprintln(w, "==========")
	fmt.Fprintf(w, "version: %s\n", Version)
	fmt.Fprintf(w, "process ID: [ %d ]\n", os.Getpid())
	fmt.Fprintf(w, "dataset: ( %s )\n", a.datasetPath)
	fmt.Fprintf(w, "n-grams: %d bigram contexts, %d trigram contexts, %d words\n",
		st.BigramContexts, st.TrigramContexts, st.Unigrams)
	if a.cfg.Admin.Addr != "" {
		fmt.Fprintf(w, "admin: http://%s\n", a.cfg.Admin.Addr)
	}
	fmt.Fprintln(w, "status: ready")
	fmt.Fprintln(w, "==========")
}
