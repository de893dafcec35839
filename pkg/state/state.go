package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/sirupsen/logrus"

	"github.com/agentwire/go-sdk/pkg/core/events"
)

// Patch failure categories, wrapped by PatchError.
var (
	// ErrPathNotFound indicates a replace/remove/move/copy on a missing path.
	ErrPathNotFound = errors.New("patch path not found")

	// ErrParentMissing indicates an add whose parent path does not exist.
	ErrParentMissing = errors.New("patch parent path missing")

	// ErrTestFailed indicates a failed test operation.
	ErrTestFailed = errors.New("patch test failed")

	// ErrInvalidDelta indicates a delta that is not a decodable patch.
	ErrInvalidDelta = errors.New("invalid state delta")
)

// PatchError describes a failed state-delta operation. Index identifies the
// first failing operation within the delta; the whole delta was discarded.
type PatchError struct {
	Index int
	Op    string
	Path  string
	Err   error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("state delta failed at operation %d (%s %s): %v", e.Index, e.Op, e.Path, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}

// emptyState is the state value of a run that has no snapshot yet
var emptyState = json.RawMessage("{}")

// ApplyDelta applies an ordered list of patch operations to a JSON document.
// Operations apply strictly in list order against a working copy; if any
// operation fails the original document is returned unchanged alongside a
// *PatchError identifying the failing operation.
func ApplyDelta(doc json.RawMessage, ops []events.JSONPatchOperation) (json.RawMessage, error) {
	if len(ops) == 0 {
		return doc, nil
	}

	working := doc
	if len(working) == 0 {
		working = emptyState
	}

	for i, op := range ops {
		encoded, err := json.Marshal([]events.JSONPatchOperation{op})
		if err != nil {
			return doc, &PatchError{Index: i, Op: op.Op, Path: op.Path, Err: fmt.Errorf("%w: %v", ErrInvalidDelta, err)}
		}

		patch, err := jsonpatch.DecodePatch(encoded)
		if err != nil {
			return doc, &PatchError{Index: i, Op: op.Op, Path: op.Path, Err: fmt.Errorf("%w: %v", ErrInvalidDelta, err)}
		}

		working, err = patch.Apply(working)
		if err != nil {
			return doc, classifyPatchError(i, op, err)
		}
	}

	return working, nil
}

func classifyPatchError(index int, op events.JSONPatchOperation, err error) *PatchError {
	patchErr := &PatchError{Index: index, Op: op.Op, Path: op.Path, Err: err}

	switch {
	case errors.Is(err, jsonpatch.ErrTestFailed):
		patchErr.Err = fmt.Errorf("%w: %v", ErrTestFailed, err)
	case errors.Is(err, jsonpatch.ErrMissing), errors.Is(err, jsonpatch.ErrInvalidIndex):
		if op.Op == "add" {
			patchErr.Err = fmt.Errorf("%w: %v", ErrParentMissing, err)
		} else {
			patchErr.Err = fmt.Errorf("%w: %v", ErrPathNotFound, err)
		}
	}

	return patchErr
}

// Store holds the current state value of one run. It is mutated only by the
// single logical thread processing that run's events; the mutex guards
// concurrent readers (e.g. a UI polling Raw while the run streams).
type Store struct {
	mu      sync.RWMutex
	current json.RawMessage
	logger  *logrus.Logger
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithInitialState seeds the store from a prior snapshot
func WithInitialState(raw json.RawMessage) StoreOption {
	return func(s *Store) {
		if len(raw) > 0 {
			s.current = append(json.RawMessage(nil), raw...)
		}
	}
}

// WithLogger sets the logger used for contained patch failures
func WithLogger(logger *logrus.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store with an empty object state
func NewStore(options ...StoreOption) *Store {
	s := &Store{
		current: append(json.RawMessage(nil), emptyState...),
		logger:  logrus.StandardLogger(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// ApplySnapshot replaces the entire state with the given value, discarding
// whatever was there before.
func (s *Store) ApplySnapshot(snapshot any) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode state snapshot: %w", err)
	}

	s.mu.Lock()
	s.current = raw
	s.mu.Unlock()
	return nil
}

// ApplyDelta applies a delta atomically to the current state. On failure the
// state is unchanged and the *PatchError is returned for the caller to
// surface; the run is not expected to terminate over it.
func (s *Store) ApplyDelta(ops []events.JSONPatchOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := ApplyDelta(s.current, ops)
	if err != nil {
		s.logger.WithError(err).Warn("State delta discarded")
		return err
	}

	s.current = next
	return nil
}

// ApplyEvent folds a state-affecting event into the store. It reports
// whether the event was state-affecting; non-state events are ignored.
func (s *Store) ApplyEvent(event events.Event) (bool, error) {
	switch ev := event.(type) {
	case *events.StateSnapshotEvent:
		return true, s.ApplySnapshot(ev.Snapshot)
	case *events.StateDeltaEvent:
		return true, s.ApplyDelta(ev.Delta)
	default:
		return false, nil
	}
}

// Raw returns a copy of the current state document
func (s *Store) Raw() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(json.RawMessage(nil), s.current...)
}

// Unmarshal decodes the current state into v
func (s *Store) Unmarshal(v any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Unmarshal(s.current, v)
}
