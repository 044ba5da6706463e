// Package main implements a mock model server for offline itinerary runs.
// It serves OpenAI-compatible /v1/chat/completions responses from fixture
// files, routing by the "model" field of the request.
//
// Usage:
//
//	mock-llm --fixtures ./fixtures --addr :11434
//
// A fixture named "mock-paris.json" answers model "mock-paris" (or "paris").
// When the fixture holds a "tool_calls" array, each entry becomes a function
// call in the reply:
//
//	{"tool_calls": [{"name": "location", "arguments": {"name": "Louvre", ...}}]}
//
// Any other JSON document is returned verbatim as assistant text, which
// exercises the planner's text fallback.
//
// Numbered fixtures ("mock-paris.1.json", "mock-paris.2.json") are served in
// order on successive calls; the base file repeats once they run out.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Tools    json.RawMessage `json:"tools,omitempty"`
}

type chatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
}

type chatToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// fixture is one canned reply.
type fixture struct {
	Content   string
	ToolCalls []chatToolCall
}

// toolFixture is the on-disk shape of a tool-calling fixture.
type toolFixture struct {
	Content   string `json:"content"`
	ToolCalls []struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"tool_calls"`
}

// capturedRequest is kept for /requests so tests can inspect prompts.
type capturedRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	HasTools  bool          `json:"has_tools"`
	CallIndex int           `json:"call_index"`
	Timestamp int64         `json:"timestamp"`
}

type server struct {
	fixtures map[string][]fixture
	logger   *slog.Logger
	calls    atomic.Int64

	mu         sync.Mutex
	modelCalls map[string]int
	requests   map[string][]capturedRequest
}

func newServer(fixtures map[string][]fixture, logger *slog.Logger) *server {
	return &server{
		fixtures:   fixtures,
		logger:     logger,
		modelCalls: make(map[string]int),
		requests:   make(map[string][]capturedRequest),
	}
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/chat/completions", s.handleChatCompletions).Methods(http.MethodPost)
	r.HandleFunc("/v1/models", s.handleModels).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/requests", s.handleRequests).Methods(http.MethodGet)
	return r
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var fixtureDir, addr string

	cmd := &cobra.Command{
		Use:          "mock-llm",
		Short:        "Serve canned model replies from fixture files",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

			if fixtureDir == "" {
				fixtureDir = os.Getenv("MOCK_LLM_FIXTURES")
			}
			if fixtureDir == "" {
				fixtureDir = "/fixtures"
			}

			fixtures, err := loadFixtures(fixtureDir)
			if err != nil {
				return fmt.Errorf("load fixtures from %s: %w", fixtureDir, err)
			}
			for _, model := range lo.Keys(fixtures) {
				logger.Info("Loaded fixtures", "model", model, "count", len(fixtures[model]))
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newServer(fixtures, logger).routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			go func() {
				<-ctx.Done()
				_ = srv.Close()
			}()

			logger.Info("Mock model server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fixtureDir, "fixtures", "", "Directory containing fixture files (env MOCK_LLM_FIXTURES)")
	cmd.Flags().StringVar(&addr, "addr", ":11434", "Listen address")
	return cmd
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	callNum := s.calls.Add(1)

	seq, ok := s.fixtures[req.Model]
	if !ok {
		seq, ok = s.fixtures[strings.TrimPrefix(req.Model, "mock-")]
	}
	if !ok {
		s.logger.Warn("No fixture for model", "call", callNum, "model", req.Model)
		http.Error(w, fmt.Sprintf("no fixture for model %q", req.Model), http.StatusNotFound)
		return
	}

	callIndex := s.record(req)
	fx := seq[min(callIndex, len(seq)-1)]

	msg := chatMessage{Role: "assistant", Content: fx.Content, ToolCalls: fx.ToolCalls}
	finish := "stop"
	if len(fx.ToolCalls) > 0 {
		finish = "tool_calls"
	}

	s.logger.Debug("Serving fixture",
		"call", callNum,
		"model", req.Model,
		"index", callIndex+1,
		"of", len(seq),
		"tool_calls", len(fx.ToolCalls))

	size := len(fx.Content) + lo.SumBy(fx.ToolCalls, func(c chatToolCall) int { return len(c.Function.Arguments) })
	writeJSON(w, http.StatusOK, chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{{Index: 0, Message: msg, FinishReason: finish}},
		Usage: chatUsage{
			PromptTokens:     size / 4,
			CompletionTokens: size / 4,
			TotalTokens:      size / 2,
		},
	})
}

// record stores the request and returns its 0-based per-model call index.
func (s *server) record(req chatRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.modelCalls[req.Model]
	s.modelCalls[req.Model] = idx + 1
	s.requests[req.Model] = append(s.requests[req.Model], capturedRequest{
		Model:     req.Model,
		Messages:  req.Messages,
		HasTools:  len(req.Tools) > 0 && string(req.Tools) != "null",
		CallIndex: idx + 1,
		Timestamp: time.Now().UnixMilli(),
	})
	return idx
}

func (s *server) handleModels(w http.ResponseWriter, _ *http.Request) {
	type modelEntry struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		OwnedBy string `json:"owned_by"`
	}
	names := lo.Keys(s.fixtures)
	sort.Strings(names)
	writeJSON(w, http.StatusOK, map[string]any{
		"object": "list",
		"data": lo.Map(names, func(name string, _ int) modelEntry {
			return modelEntry{ID: name, Object: "model", OwnedBy: "mock-llm"}
		}),
	})
}

func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	byModel := make(map[string]int, len(s.modelCalls))
	for model, n := range s.modelCalls {
		byModel[model] = n
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"total_calls":    s.calls.Load(),
		"calls_by_model": byModel,
	})
}

// handleRequests returns captured requests, optionally filtered by
// ?model= and ?call= (1-based).
func (s *server) handleRequests(w http.ResponseWriter, r *http.Request) {
	modelFilter := r.URL.Query().Get("model")
	callFilter, callErr := strconv.Atoi(r.URL.Query().Get("call"))

	s.mu.Lock()
	result := make(map[string][]capturedRequest)
	for model, reqs := range s.requests {
		if modelFilter != "" && model != modelFilter {
			continue
		}
		if callErr == nil {
			reqs = lo.Filter(reqs, func(c capturedRequest, _ int) bool { return c.CallIndex == callFilter })
		}
		result[model] = reqs
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"requests_by_model": result})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var numberedFileRe = regexp.MustCompile(`^(.+)\.(\d+)\.json$`)

// loadFixtures reads every *.json file under dir. Per model, numbered files
// come first in numeric order and the base file is appended last.
func loadFixtures(dir string) (map[string][]fixture, error) {
	base := make(map[string]fixture)
	numbered := make(map[string]map[int]fixture)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		fx, err := parseFixture(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if m := numberedFileRe.FindStringSubmatch(info.Name()); m != nil {
			idx, _ := strconv.Atoi(m[2])
			if numbered[m[1]] == nil {
				numbered[m[1]] = make(map[int]fixture)
			}
			numbered[m[1]][idx] = fx
			return nil
		}
		base[strings.TrimSuffix(info.Name(), ".json")] = fx
		return nil
	})
	if err != nil {
		return nil, err
	}

	fixtures := make(map[string][]fixture)
	models := lo.Union(lo.Keys(base), lo.Keys(numbered))
	for _, model := range models {
		var seq []fixture
		indices := lo.Keys(numbered[model])
		sort.Ints(indices)
		for _, idx := range indices {
			seq = append(seq, numbered[model][idx])
		}
		if fx, ok := base[model]; ok {
			seq = append(seq, fx)
		}
		if len(seq) > 0 {
			fixtures[model] = seq
		}
	}

	if len(fixtures) == 0 {
		return nil, fmt.Errorf("no fixture files found in %s", dir)
	}
	return fixtures, nil
}

// parseFixture turns a fixture file into a reply. Documents with a non-empty
// tool_calls array become function calls; anything else is sent as text.
func parseFixture(data []byte) (fixture, error) {
	if !json.Valid(data) {
		return fixture{}, fmt.Errorf("invalid JSON")
	}

	var tf toolFixture
	if err := json.Unmarshal(data, &tf); err != nil || len(tf.ToolCalls) == 0 {
		return fixture{Content: string(data)}, nil
	}

	calls := make([]chatToolCall, 0, len(tf.ToolCalls))
	for i, c := range tf.ToolCalls {
		if c.Name == "" {
			return fixture{}, fmt.Errorf("tool_calls[%d]: name is required", i)
		}
		args := string(c.Arguments)
		if args == "" {
			args = "{}"
		}
		calls = append(calls, chatToolCall{
			ID:       fmt.Sprintf("call_%d", i),
			Type:     "function",
			Function: chatFunction{Name: c.Name, Arguments: args},
		})
	}
	return fixture{Content: tf.Content, ToolCalls: calls}, nil
}
