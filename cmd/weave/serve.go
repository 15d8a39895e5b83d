package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/weave"
	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/internal/manifest"
	"github.com/vango-dev/weave/pkg/frame"
	"github.com/vango-dev/weave/pkg/metrics"
	"github.com/vango-dev/weave/pkg/preview"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve [manifest]",
		Short: "Serve a live preview of a manifest",
		Long: `Build the manifest and serve it with the preview server.

Components are mounted on a frame loop running at frame.rate.
Browsers connected to /ws receive a new snapshot after every frame
that changed the document. POST /components/{id}/update applies a
JSON state diff to a mounted component.

Examples:
  weave serve
  weave serve --port=8080
  weave serve --host=0.0.0.0 site.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			path := cfg.ManifestPath()
			if len(args) == 1 {
				path = args[0]
			}

			ctx := cmd.Context()
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cmd, cfg, opts, path)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from weave.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from weave.json)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts *globalOptions, path string) error {
	logger := opts.logger(cfg, cmd.ErrOrStderr())

	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	loop := frame.NewLoop(frame.Config{Rate: cfg.FrameInterval(), Logger: logger})

	rtCfg := weave.Config{Scheduler: loop, Logger: logger}
	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rtCfg.Recorder = metrics.NewPrometheus(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)
		gatherer = reg
	}
	rt := weave.New(rtCfg)

	roots, err := m.Build(rt)
	if err != nil {
		return err
	}

	title := cfg.Name
	if title == "" {
		title = "weave"
	}
	srv, err := preview.New(preview.Config{
		Runtime:  rt,
		Loop:     loop,
		Title:    title,
		Gatherer: gatherer,
		Logger:   logger,
	})
	if err != nil {
		return errors.New("E402").Wrap(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(ctx)
	}()
	defer func() {
		cancel()
		<-loopDone
	}()

	for _, root := range roots {
		if err := srv.Add(ctx, root.ID, root.Component); err != nil {
			return errors.New("E402").Wrap(err)
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprint(w, banner)
	success(w, "Serving %s on %s", path, cfg.DevURL())
	info(w, "%d components mounted, %d frames per second", len(roots), cfg.Frame.Rate)
	if gatherer != nil {
		info(w, "Metrics at %s/metrics", cfg.DevURL())
	}

	if err := srv.ListenAndServe(ctx, cfg.DevAddress()); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.New("E402").Wrap(err)
	}
	return nil
}
