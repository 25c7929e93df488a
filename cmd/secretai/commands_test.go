package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"secretai/internal/cli"
	"secretai/pkg/secretai"
)

const (
	testMnemonic = "grant rice replace explain federal release fix clever romance raise often wild taxi quarter soccer fiber love must tape steak together observe swap guitar"
	testPrivKey  = "f0a7b67eb9a719d54f8a9bfbfb187d8c296b97911a05bf5ca30494823e46beb6"
)

// fakeQuerier answers contract queries by their tag.
type fakeQuerier struct {
	replies map[string]string
	queries []string
}

func (f *fakeQuerier) QueryContract(ctx context.Context, address string, query, out any) error {
	raw, err := json.Marshal(query)
	if err != nil {
		return err
	}
	f.queries = append(f.queries, string(raw))

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return err
	}
	for tag := range tagged {
		if reply, ok := f.replies[tag]; ok {
			return json.Unmarshal([]byte(reply), out)
		}
	}
	return fmt.Errorf("unexpected query %s", raw)
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, q *fakeQuerier, stdin string, args ...string) (string, error) {
	t.Helper()

	if q != nil {
		secretOptions = []secretai.SecretOption{secretai.WithQuerier(q)}
		t.Cleanup(func() { secretOptions = nil })
	}

	cfg := writeConfig(t, "log_level: error\n")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfg, "--no-color"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestKeyCommand_Arg(t *testing.T) {
	out, err := execute(t, nil, "", "key", testMnemonic)
	if err != nil {
		t.Fatalf("key failed: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", out)
	}
	if lines[0] != "private key: "+testPrivKey {
		t.Errorf("unexpected key line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "address:     secret1") {
		t.Errorf("unexpected address line: %q", lines[1])
	}
}

func TestKeyCommand_Stdin(t *testing.T) {
	fromArg, err := execute(t, nil, "", "key", testMnemonic)
	if err != nil {
		t.Fatalf("key failed: %v", err)
	}

	fromStdin, err := execute(t, nil, "  "+testMnemonic+"\n", "key")
	if err != nil {
		t.Fatalf("key from stdin failed: %v", err)
	}
	if fromStdin != fromArg {
		t.Errorf("stdin and argument must derive the same key:\nExpected: %q\nGot: %q", fromArg, fromStdin)
	}
}

func TestKeyCommand_InvalidMnemonic(t *testing.T) {
	badChecksum := strings.TrimSuffix(testMnemonic, "guitar") + "zoo"

	for _, tt := range []struct {
		name  string
		stdin string
		args  []string
	}{
		{"words", "", []string{"key", "invalid mnemonic"}},
		{"checksum", "", []string{"key", badChecksum}},
		{"empty stdin", "\n", []string{"key"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, nil, tt.stdin, tt.args...)
			if !errors.Is(err, secretai.ErrInvalidMnemonic) {
				t.Fatalf("expected ErrInvalidMnemonic, got %v", err)
			}
			if out != "" {
				t.Errorf("nothing should be printed, got %q", out)
			}
		})
	}
}

func TestModelsCommand(t *testing.T) {
	q := &fakeQuerier{replies: map[string]string{
		"get_models": `{"models":["deepseek-r1:70b","llama3.3:70b"]}`,
	}}

	out, err := execute(t, q, "", "models")
	if err != nil {
		t.Fatalf("models failed: %v", err)
	}
	if out != "deepseek-r1:70b\nllama3.3:70b\n" {
		t.Errorf("unexpected output: %q", out)
	}
	if len(q.queries) != 1 || q.queries[0] != `{"get_models":{}}` {
		t.Errorf("unexpected queries: %v", q.queries)
	}
}

func TestModelsCommand_RejectsArgs(t *testing.T) {
	q := &fakeQuerier{}
	if _, err := execute(t, q, "", "models", "extra"); err == nil {
		t.Fatal("expected an error for a positional argument")
	}
	if len(q.queries) != 0 {
		t.Errorf("no query should be sent, got %v", q.queries)
	}
}

func TestURLsCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantQuery string
	}{
		{"all", []string{"urls"}, `{"get_u_r_ls":{}}`},
		{"model", []string{"urls", "--model", "deepseek-r1:70b"}, `{"get_u_r_ls":{"model":"deepseek-r1:70b"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{replies: map[string]string{
				"get_u_r_ls": `{"urls":["https://secretai-rytn.scrtlabs.com:21434"]}`,
			}}

			out, err := execute(t, q, "", tt.args...)
			if err != nil {
				t.Fatalf("urls failed: %v", err)
			}
			if out != "https://secretai-rytn.scrtlabs.com:21434\n" {
				t.Errorf("unexpected output: %q", out)
			}
			if len(q.queries) != 1 || q.queries[0] != tt.wantQuery {
				t.Errorf("unexpected queries: %v", q.queries)
			}
		})
	}
}

func TestURLsCommand_QueryFailure(t *testing.T) {
	_, err := execute(t, &fakeQuerier{}, "", "urls")
	if !errors.Is(err, secretai.ErrQueryFailure) {
		t.Fatalf("expected ErrQueryFailure, got %v", err)
	}
}

// newChatServer streams chunks as an OpenAI compatible completion.
func newChatServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			payload, _ := json.Marshal(map[string]any{
				"id":     "1",
				"object": "chat.completion.chunk",
				"model":  defaultChatModel,
				"choices": []map[string]any{{
					"index": 0,
					"delta": map[string]any{"role": "assistant", "content": c},
				}},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChatCommand(t *testing.T) {
	t.Setenv(secretai.EnvAPIKey, "test-key")
	srv := newChatServer(t, "<think>", "hmm", "</think>", "Hello", " world")

	out, err := execute(t, nil, "", "chat", "--host", srv.URL, "hi")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}

	want := cli.ThinkMarker + "\nhmm " + cli.ThinkMarker + "\nHello world\n"
	if out != want {
		t.Errorf("Output mismatch:\nExpected: %q\nGot: %q", want, out)
	}
}

func TestChatCommand_Raw(t *testing.T) {
	t.Setenv(secretai.EnvAPIKey, "test-key")
	srv := newChatServer(t, "<think>", "hmm", "</think>", "Hello", " world")

	out, err := execute(t, nil, "", "chat", "--raw", "--host", srv.URL, "hi")
	if err != nil {
		t.Fatalf("chat --raw failed: %v", err)
	}
	if out != "<think>hmm</think>Hello world\n" {
		t.Errorf("unexpected raw output: %q", out)
	}
}

func TestChatCommand_InvalidHost(t *testing.T) {
	t.Setenv(secretai.EnvAPIKey, "test-key")

	_, err := execute(t, nil, "", "chat", "--host", "ftp://worker.example", "hi")
	if !errors.Is(err, secretai.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
