package commands

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"

	"github.com/diogo/travelchat/internal/api"
	"github.com/diogo/travelchat/internal/chat"
	"github.com/diogo/travelchat/internal/config"
	"github.com/diogo/travelchat/internal/intent"
	"github.com/diogo/travelchat/internal/models"
	"github.com/diogo/travelchat/internal/server"
)

func TestQuery_PrintsReply(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run(context.Background(), "Bye"); err != nil {
		t.Fatalf("query returned error: %v", err)
	}

	if env.stdout.String() != "Safe travels!\n" {
		t.Errorf("stdout = %q, want %q", env.stdout.String(), "Safe travels!\n")
	}
	if got := env.sender.Messages(); !reflect.DeepEqual(got, []string{"Bye"}) {
		t.Errorf("sent %v, want [Bye]", got)
	}
}

func TestQuery_FromFile(t *testing.T) {
	env := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "question.txt")
	if err := os.WriteFile(path, []byte("  Visa requirements \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := env.run(context.Background(), "-f", path); err != nil {
		t.Fatalf("query returned error: %v", err)
	}
	if got := env.sender.Messages(); !reflect.DeepEqual(got, []string{"Visa requirements"}) {
		t.Errorf("sent %v, want the trimmed file content", got)
	}
}

func TestQuery_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	err := env.run(context.Background(), "-f", filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil || !strings.Contains(err.Error(), "failed to read file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestQuery_FromStdin(t *testing.T) {
	env := newTestEnv(t)
	env.deps.StdinIsTTY = func() bool { return false }
	env.deps.Stdin = strings.NewReader("Packing list\n")

	if err := env.run(context.Background()); err != nil {
		t.Fatalf("query returned error: %v", err)
	}
	if got := env.sender.Messages(); !reflect.DeepEqual(got, []string{"Packing list"}) {
		t.Errorf("sent %v, want [Packing list]", got)
	}
}

func TestQuery_BlankMessage(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run(context.Background(), "   "); err == nil {
		t.Error("expected an error for a blank message")
	}
	if env.sender.Calls() != 0 {
		t.Error("blank message should not be sent")
	}
}

func TestQuery_FailurePrintsFallback(t *testing.T) {
	env := newTestEnv(t)
	env.sender.Err = errors.New("connection refused")

	err := env.run(context.Background(), "Hello")
	if !errors.Is(err, errNoReply) {
		t.Fatalf("expected errNoReply, got %v", err)
	}
	if env.stdout.String() != models.FallbackReply+"\n" {
		t.Errorf("stdout = %q, want the fallback reply", env.stdout.String())
	}
	if strings.Contains(env.stdout.String()+env.stderr.String(), "connection refused") {
		t.Error("the failure cause must not be shown")
	}
}

func TestQuery_ReplyMatchingFallbackTextSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.sender.Reply = models.FallbackReply

	if err := env.run(context.Background(), "Hello"); err != nil {
		t.Fatalf("a real reply should not fail the query, got %v", err)
	}
	if env.stdout.String() != models.FallbackReply+"\n" {
		t.Errorf("stdout = %q", env.stdout.String())
	}
}

func TestQuery_Copy(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run(context.Background(), "--copy", "Thanks"); err != nil {
		t.Fatalf("query returned error: %v", err)
	}
	if env.copied != "Safe travels!" {
		t.Errorf("copied %q, want the reply", env.copied)
	}
}

func TestQuery_CopyFailureIsWarning(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Clipboard = func(string) error { return errors.New("no clipboard") }

	if err := env.run(context.Background(), "--copy", "Thanks"); err != nil {
		t.Fatalf("clipboard failure should not fail the query: %v", err)
	}
	if !strings.Contains(env.stderr.String(), "Failed to copy to clipboard") {
		t.Errorf("expected a warning, got %q", env.stderr.String())
	}
}

func TestQuery_FlagsOverrideConfig(t *testing.T) {
	env := newTestEnv(t)

	cfg := config.DefaultConfig()
	cfg.ServerURL = "http://configured.test"
	cfg.TimeoutSeconds = 30
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}

	if err := env.run(context.Background(), "--server", "http://flag.test:9000/", "--timeout", "5", "Hi"); err != nil {
		t.Fatalf("query returned error: %v", err)
	}
	if env.senderCfg.ServerURL != "http://flag.test:9000" {
		t.Errorf("ServerURL = %s", env.senderCfg.ServerURL)
	}
	if env.senderCfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout = %v", env.senderCfg.Timeout())
	}
}

func TestQuery_InvalidFlags(t *testing.T) {
	tests := [][]string{
		{"--server", "ftp://example.test", "Hi"},
		{"--dispatch", "random", "Hi"},
	}
	for _, args := range tests {
		env := newTestEnv(t)
		if err := env.run(context.Background(), args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
		if env.sender.Calls() != 0 {
			t.Errorf("%v: nothing should be sent", args)
		}
	}
}

func TestQuery_AgainstServer(t *testing.T) {
	classifier, err := intent.NewClassifier(intent.Default(), intent.WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	srvCfg := config.ServerConfig{Addr: ":0", Threshold: intent.DefaultThreshold, AllowedOrigins: []string{"*"}, ShutdownTimeout: time.Second}
	ts := httptest.NewServer(server.New(srvCfg, classifier, zerolog.Nop()).Routes())
	defer ts.Close()

	env := newTestEnv(t)
	env.deps.NewSender = func(cfg config.Config, logger zerolog.Logger) (chat.Sender, error) {
		return api.NewClient(
			api.WithBaseURL(cfg.ServerURL),
			api.WithHTTPClient(&fhttp.Client{}),
			api.WithLogger(logger),
		)
	}

	if err := env.run(context.Background(), "--server", ts.URL, "Hello"); err != nil {
		t.Fatalf("query returned error: %v", err)
	}

	reply := strings.TrimSuffix(env.stdout.String(), "\n")
	var greetings []string
	for _, in := range intent.Default() {
		if in.Tag == "greeting" {
			greetings = in.Responses
		}
	}
	found := false
	for _, g := range greetings {
		if g == reply {
			found = true
		}
	}
	if !found {
		t.Errorf("reply %q is not a greeting response", reply)
	}
}

func TestSpinnerLifecycle(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(&buf, "Asking")
	s.start()
	time.Sleep(100 * time.Millisecond)
	s.stopWithSuccess("done")

	out := buf.String()
	if !strings.Contains(out, "Asking") || !strings.Contains(out, "done") {
		t.Errorf("unexpected spinner output %q", out)
	}

	s = newSpinner(&buf, "Asking")
	s.start()
	s.stopWithError()
	// a second stop must not panic
	s.stopOnce()
}
