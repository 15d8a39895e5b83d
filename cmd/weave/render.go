package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/weave"
	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/internal/manifest"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/frame"
	"github.com/vango-dev/weave/pkg/publish"
)

const tracerName = "weave/cmd"

// maxSettleFrames bounds how long render waits for mount barriers.
const maxSettleFrames = 1024

// newObjectClient builds the object store client used by --publish.
var newObjectClient = func(cfg *config.Config) (publish.PutObjectAPI, error) {
	return publish.NewS3Client(publish.ClientConfig{
		Region:   cfg.Publish.Region,
		Endpoint: cfg.Publish.Endpoint,
	})
}

func renderCmd(opts *globalOptions) *cobra.Command {
	var (
		out        string
		publishKey string
	)

	cmd := &cobra.Command{
		Use:   "render [manifest]",
		Short: "Render a manifest to HTML",
		Long: `Build every component in the manifest, mount the roots into a
document body, run frames until every mount barrier has completed,
and print the rendered document.

The manifest defaults to the "manifest" entry of weave.json.

Examples:
  weave render
  weave render site.yaml --out index.html
  weave render --publish index.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			path := cfg.ManifestPath()
			if len(args) == 1 {
				path = args[0]
			}

			ctx := cmd.Context()
			logger := opts.logger(cfg, cmd.ErrOrStderr())

			doc, html, err := render(ctx, path, logger)
			if err != nil {
				return err
			}

			switch {
			case out != "":
				if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
					return errors.New("E401").WithDetail("Cannot write " + out).Wrap(err)
				}
				success(cmd.OutOrStdout(), "Rendered %s to %s", path, out)
			case publishKey == "":
				fmt.Fprintln(cmd.OutOrStdout(), html)
			}

			if publishKey != "" {
				key, err := publishDocument(ctx, cfg, logger, publishKey, doc)
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Published s3://%s/%s", cfg.Publish.Bucket, key)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the document to a file instead of stdout")
	cmd.Flags().StringVarP(&publishKey, "publish", "p", "", "Upload the document under this object key")

	return cmd
}

// render builds the manifest at path, mounts its roots into a document and
// settles every pending frame. It returns the document and its HTML.
func render(ctx context.Context, path string, logger *slog.Logger) (*dom.Node, string, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "weave.render",
		trace.WithAttributes(attribute.String("weave.manifest", path)),
	)
	defer span.End()

	doc, html, err := renderManifest(path, logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, "", err
	}
	span.SetAttributes(attribute.Int("weave.bytes", len(html)))
	return doc, html, nil
}

func renderManifest(path string, logger *slog.Logger) (*dom.Node, string, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, "", err
	}

	sched := frame.NewManual()
	rt := weave.New(weave.Config{Scheduler: sched, Logger: logger})

	roots, err := m.Build(rt)
	if err != nil {
		return nil, "", err
	}

	doc := dom.NewElement("html")
	body := dom.NewElement("body")
	dom.AppendChild(doc, body)
	for _, root := range roots {
		if err := root.Component.Mount(body); err != nil {
			return nil, "", errors.New("E401").
				WithDetail(fmt.Sprintf("Cannot mount %q: %v", root.ID, err)).
				Wrap(err)
		}
	}

	frames := sched.Settle(maxSettleFrames)
	if n := sched.Pending(); n > 0 {
		return nil, "", errors.New("E401").
			WithDetail(fmt.Sprintf("%d frame callbacks still pending after %d frames", n, frames))
	}
	logger.Debug("settled", "roots", len(roots), "frames", frames)

	html, err := dom.Render(doc)
	if err != nil {
		return nil, "", errors.New("E401").Wrap(err)
	}
	return doc, "<!DOCTYPE html>" + html, nil
}

func publishDocument(ctx context.Context, cfg *config.Config, logger *slog.Logger, key string, doc *dom.Node) (string, error) {
	if cfg.Publish.Bucket == "" {
		return "", errors.New("E410").WithSuggestion(`Add "publish": {"bucket": "..."} to weave.json`)
	}

	client, err := newObjectClient(cfg)
	if err != nil {
		return "", errors.New("E411").WithDetail(err.Error()).Wrap(err)
	}

	p := publish.New(client, cfg.Publish.Bucket, "").WithLogger(logger)
	full, err := p.Publish(ctx, cfg.ObjectKey(key), doc)
	if err != nil {
		return "", errors.New("E411").Wrap(err)
	}
	return full, nil
}
