package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const fullConfig = `
publishers:
  - id: main
    type: twitter
    twitter:
      consumer_key: ${TW_KEY}
      consumer_secret: cs
      access_token: at
      access_token_secret: ats
  - id: mirror
    type: http
    http:
      url: https://hooks.example.com/
  - id: feed
    type: queue
    enabled: false
    queue:
      provider: aws-sns
      sns:
        topic_arn: arn:aws:sns:eu-west-1:1234:posts
        region: eu-west-1
        access_key_id: ak
        secret_access_key: sk
`

func TestLoadRegistry(t *testing.T) {
	t.Setenv("TW_KEY", "expanded-key")

	reg, err := LoadRegistry(writeConfig(t, "publishers.yaml", fullConfig))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if got := len(reg.All()); got != 3 {
		t.Fatalf("All() = %d, want 3", got)
	}
	if got := len(reg.Enabled()); got != 2 {
		t.Errorf("Enabled() = %d, want 2", got)
	}

	main, ok := reg.ByID("main")
	if !ok {
		t.Fatal("ByID(main) not found")
	}
	if main.Twitter.ConsumerKey != "expanded-key" {
		t.Errorf("env expansion failed: %q", main.Twitter.ConsumerKey)
	}
	if !main.PrimaryValue() {
		t.Error("twitter sink should default to primary")
	}

	mirror, _ := reg.ByID("mirror")
	if mirror.PrimaryValue() {
		t.Error("http sink should default to mirror")
	}
	if mirror.HTTP.Method != "POST" {
		t.Errorf("method = %q, want default POST", mirror.HTTP.Method)
	}
	if mirror.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Errorf("timeout = %d, want default", mirror.HTTP.TimeoutSeconds)
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name:    "duplicate ids",
			content: "publishers:\n  - id: a\n    type: http\n    http: {url: u}\n  - id: a\n    type: http\n    http: {url: u}\n",
			errPart: "duplicate",
		},
		{
			name:    "unknown type",
			content: "publishers:\n  - id: a\n    type: carrier-pigeon\n",
			errPart: "not supported",
		},
		{
			name:    "twitter missing credentials",
			content: "publishers:\n  - id: a\n    type: twitter\n    twitter: {consumer_key: k}\n",
			errPart: "consumer_secret is required",
		},
		{
			name:    "http missing url",
			content: "publishers:\n  - id: a\n    type: http\n    http: {method: POST}\n",
			errPart: "http.url is required",
		},
		{
			name:    "queue unknown provider",
			content: "publishers:\n  - id: a\n    type: queue\n    queue: {provider: rabbit}\n",
			errPart: "not supported",
		},
		{
			name:    "sqs missing region",
			content: "publishers:\n  - id: a\n    type: queue\n    queue:\n      provider: aws-sqs\n      sqs: {uri: u, access_key_id: k, secret_access_key: s}\n",
			errPart: "sqs.region is required",
		},
		{
			name:    "gcp missing topic",
			content: "publishers:\n  - id: a\n    type: queue\n    queue:\n      provider: gcp\n      gcp: {project_id: p}\n",
			errPart: "gcp.topic is required",
		},
		{
			name:    "empty file",
			content: "publishers: []\n",
			errPart: "no publisher entries",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRegistry(writeConfig(t, "publishers.yaml", tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.errPart) {
				t.Fatalf("err = %v, want %q", err, tc.errPart)
			}
		})
	}
}

func TestPrimaryOverride(t *testing.T) {
	content := `
publishers:
  - id: main
    type: http
    primary: true
    http: {url: https://example.com}
`
	reg, err := LoadRegistry(writeConfig(t, "publishers.yaml", content))
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := reg.ByID("main")
	if !cfg.PrimaryValue() {
		t.Error("explicit primary flag ignored")
	}
}
