package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/publish"
)

const siteManifest = `templates:
  card: <div class="card"><h2 data-text="title">?</h2><ul><!--slot:items--></ul></div>
  item: <li data-text="label"></li>
mount:
  - id: main
    component: card
    props: {title: Hello}
    slots:
      items:
        - component: item
          props: {label: one}
`

const siteHTML = `<!DOCTYPE html><html><body><div class="card"><h2 data-text="title">Hello</h2>` +
	`<ul><!--slot:items--><li data-text="label">one</li></ul></div></body></html>`

// writeProject writes weave.json and site.yaml into a temp dir and returns
// the config path.
func writeProject(t *testing.T, configJSON, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.ConfigFileName)
	if err := os.WriteFile(cfgPath, []byte(configJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "site.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func errorCode(err error) string {
	var we *errors.WeaveError
	if stderrors.As(err, &we) {
		return we.Code
	}
	return ""
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	f.in, f.body = in, string(data)
	return &s3.PutObjectOutput{}, nil
}

func useObjectClient(t *testing.T, client publish.PutObjectAPI) {
	t.Helper()
	prev := newObjectClient
	newObjectClient = func(*config.Config) (publish.PutObjectAPI, error) { return client, nil }
	t.Cleanup(func() { newObjectClient = prev })
}

func TestRenderToStdout(t *testing.T) {
	cfgPath := writeProject(t, `{"manifest": "site.yaml"}`, siteManifest)

	out, err := execute(t, "--config", cfgPath, "render")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != siteHTML {
		t.Errorf("output =\n%s\nwant\n%s", out, siteHTML)
	}
}

func TestRenderToFile(t *testing.T) {
	cfgPath := writeProject(t, `{}`, siteManifest)
	manifestPath := filepath.Join(filepath.Dir(cfgPath), "site.yaml")
	outPath := filepath.Join(t.TempDir(), "index.html")

	out, err := execute(t, "--config", cfgPath, "render", manifestPath, "--out", outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Rendered") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != siteHTML {
		t.Errorf("file =\n%s\nwant\n%s", data, siteHTML)
	}
}

func TestRenderPublish(t *testing.T) {
	cfgPath := writeProject(t,
		`{"manifest": "site.yaml", "publish": {"bucket": "site", "prefix": "preview/"}}`,
		siteManifest)
	client := &fakeS3{}
	useObjectClient(t, client)

	out, err := execute(t, "--config", cfgPath, "render", "--publish", "index.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "s3://site/preview/index.html") {
		t.Errorf("output = %q", out)
	}
	if client.in == nil {
		t.Fatal("nothing uploaded")
	}
	if aws.ToString(client.in.Key) != "preview/index.html" || client.body != siteHTML {
		t.Errorf("uploaded %s:\n%s", aws.ToString(client.in.Key), client.body)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		manifest string
		args     []string
		code     string
	}{
		{
			name:     "unknown template",
			config:   `{"manifest": "site.yaml"}`,
			manifest: "templates:\n  card: <div></div>\nmount:\n  - id: main\n    component: crad\n",
			args:     []string{"render"},
			code:     "E301",
		},
		{
			name:     "publish without bucket",
			config:   `{"manifest": "site.yaml"}`,
			manifest: siteManifest,
			args:     []string{"render", "--publish", "index.html"},
			code:     "E410",
		},
		{
			name:     "invalid config",
			config:   `{"frame": {"rate": 5000}}`,
			manifest: siteManifest,
			args:     []string{"render"},
			code:     "E103",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeProject(t, tt.config, tt.manifest)
			_, err := execute(t, append([]string{"--config", cfgPath}, tt.args...)...)
			if code := errorCode(err); code != tt.code {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q", out)
	}

	out, err = execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Go version:") {
		t.Errorf("version = %q", out)
	}
}

func TestLoggerLevel(t *testing.T) {
	cfg := config.New()
	cfg.Log.Level = "warn"

	buf := &bytes.Buffer{}
	(&globalOptions{}).logger(cfg, buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf)
	}

	(&globalOptions{verbose: true}).logger(cfg, buf).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("--verbose did not enable debug: %q", buf)
	}
}
