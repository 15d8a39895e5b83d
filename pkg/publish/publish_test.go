package publish

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/weave/pkg/dom"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestPublish(t *testing.T) {
	client := &fakeS3{}
	p := New(client, "site", "pages/")
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	doc := dom.NewElement("html")
	body := dom.NewElement("body")
	dom.SetText(body, "hi")
	dom.AppendChild(doc, body)

	key, err := p.Publish(context.Background(), "index.html", doc)
	if err != nil {
		t.Fatal(err)
	}
	if key != "pages/index.html" {
		t.Errorf("key = %q", key)
	}

	in := client.inputs[0]
	if aws.ToString(in.Bucket) != "site" || aws.ToString(in.Key) != "pages/index.html" {
		t.Errorf("bucket/key = %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != ContentType {
		t.Errorf("ContentType = %q", aws.ToString(in.ContentType))
	}
	if in.Metadata["published-at"] != "2026-01-02T03:04:05Z" {
		t.Errorf("metadata = %v", in.Metadata)
	}
	if client.bodies[0] != "<!DOCTYPE html><html><body>hi</body></html>" {
		t.Errorf("body = %q", client.bodies[0])
	}
}

func TestPublishFragmentHasNoDoctype(t *testing.T) {
	client := &fakeS3{}
	p := New(client, "site", "")

	if _, err := p.Publish(context.Background(), "card.html", dom.NewElement("div")); err != nil {
		t.Fatal(err)
	}
	if client.bodies[0] != "<div></div>" {
		t.Errorf("body = %q", client.bodies[0])
	}
}

func TestPublishErrors(t *testing.T) {
	if _, err := New(&fakeS3{}, "", "").PublishHTML(context.Background(), "k", "x"); !errors.Is(err, ErrNoBucket) {
		t.Errorf("err = %v, want ErrNoBucket", err)
	}

	boom := errors.New("boom")
	if _, err := New(&fakeS3{err: boom}, "b", "").PublishHTML(context.Background(), "k", "x"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestNewS3Client(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	if _, err := NewS3Client(ClientConfig{}); err == nil {
		t.Error("missing region should fail")
	}

	client, err := NewS3Client(ClientConfig{Region: "eu-west-1", Endpoint: "http://localhost:9000"})
	if err != nil {
		t.Fatal(err)
	}
	opts := client.Options()
	if opts.Region != "eu-west-1" || aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" || !opts.UsePathStyle {
		t.Errorf("options = region %q endpoint %q pathStyle %v", opts.Region, aws.ToString(opts.BaseEndpoint), opts.UsePathStyle)
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := envCredentials(context.Background()); err == nil {
		t.Error("missing credentials should fail")
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "id" || creds.SecretAccessKey != "secret" {
		t.Errorf("creds = %+v", creds)
	}
}
