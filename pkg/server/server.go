package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/agentwire/go-sdk/pkg/core"
	"github.com/agentwire/go-sdk/pkg/core/events"
	"github.com/agentwire/go-sdk/pkg/encoding/sse"
	"github.com/agentwire/go-sdk/pkg/state"
	"github.com/agentwire/go-sdk/pkg/stream"
)

// Agent produces the event stream for one run. Run blocks until the run
// is complete; the emitter enforces lifecycle ordering, so an agent that
// forgets a terminal event gets one synthesized from its return value.
type Agent interface {
	Run(ctx context.Context, input *core.RunAgentInput, emitter *Emitter) error
}

// AgentFunc adapts a function to the Agent interface
type AgentFunc func(ctx context.Context, input *core.RunAgentInput, emitter *Emitter) error

// Run implements Agent
func (f AgentFunc) Run(ctx context.Context, input *core.RunAgentInput, emitter *Emitter) error {
	return f(ctx, input, emitter)
}

// Config contains configuration options for the server
type Config struct {
	// Address is the server listen address (e.g., ":8080")
	Address string

	// BufferSize is the per-run event channel capacity
	BufferSize int

	Logger *logrus.Logger
}

// Server hosts multiple agents, one run per request
type Server struct {
	config Config
	logger *logrus.Logger
	writer *sse.Writer

	mu     sync.RWMutex
	agents map[string]Agent
	active map[string]struct{}

	httpServer *http.Server
}

// New creates a server with the specified configuration
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &Server{
		config: config,
		logger: config.Logger,
		writer: sse.NewWriter().WithLogger(config.Logger),
		agents: make(map[string]Agent),
		active: make(map[string]struct{}),
	}
}

// RegisterAgent registers an agent under the specified name
func (s *Server) RegisterAgent(name string, agent Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[name] = agent
}

// UnregisterAgent removes an agent from the server
func (s *Server) UnregisterAgent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.agents, name)
}

// GetAgent retrieves a registered agent by name
func (s *Server) GetAgent(name string) (Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, exists := s.agents[name]
	return agent, exists
}

// Handler returns the HTTP handler serving agent runs at
// POST /agents/{name}.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /agents/{name}", s.handleRun)
	return mux
}

// ListenAndServe starts the server and blocks until it stops
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.WithField("address", s.config.Address).Info("Starting AgentWire server")
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server, waiting for in-flight runs
// up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// claimRun reserves a runId for the duration of a request
func (s *Server) claimRun(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.active[runID]; exists {
		return false
	}
	s.active[runID] = struct{}{}
	return true
}

func (s *Server) releaseRun(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, runID)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	agent, ok := s.GetAgent(name)
	if !ok {
		http.Error(w, fmt.Sprintf("agent %q: %v", name, core.ErrAgentNotFound), http.StatusNotFound)
		return
	}

	var input core.RunAgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("invalid run input: %v", err), http.StatusBadRequest)
		return
	}
	if input.ThreadID == "" {
		input.ThreadID = events.GenerateThreadID()
	}
	if input.RunID == "" {
		input.RunID = events.GenerateRunID()
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.claimRun(input.RunID) {
		http.Error(w, fmt.Sprintf("run %s: %v", input.RunID, core.ErrRunConflict), http.StatusConflict)
		return
	}
	defer s.releaseRun(input.RunID)

	logger := s.logger.WithFields(logrus.Fields{
		"agent":    name,
		"threadId": input.ThreadID,
		"runId":    input.RunID,
	})
	logger.Info("Run started")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	storeOptions := []state.StoreOption{state.WithLogger(s.logger)}
	if len(input.State) > 0 {
		storeOptions = append(storeOptions, state.WithInitialState(input.State))
	}

	sub := stream.NewSubscriptionBuffer(s.config.BufferSize)
	emitter := newEmitter(input.ThreadID, input.RunID, sub, state.NewStore(storeOptions...), s.logger)

	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		defer sub.Finish(nil)

		runErr := agent.Run(ctx, &input, emitter)
		if runErr != nil {
			runErr = &core.AgentError{AgentName: name, RunID: input.RunID, Err: runErr}
		}
		if emitter.Phase().Terminal() {
			return runErr
		}

		// The agent returned without closing the run; synthesize the
		// terminal event so clients always observe one.
		if runErr != nil {
			if emitErr := emitter.ErrorRun(errors.Unwrap(runErr).Error()); emitErr != nil {
				logger.WithError(emitErr).Error("Failed to emit run error")
			}
			return runErr
		}
		return emitter.FinishRun()
	})

	g.Go(func() error {
		for event := range sub.Events() {
			if err := s.writer.WriteEvent(ctx, w, event); err != nil {
				sub.Cancel()
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Warn("Run ended with error")
		return
	}
	logger.Info("Run complete")
}
