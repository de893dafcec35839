package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/go-sdk/pkg/core/events"
)

func TestApplyDelta(t *testing.T) {
	doc := json.RawMessage(`{"counter":1,"items":["a"],"user":{"name":"ada"}}`)

	next, err := ApplyDelta(doc, []events.JSONPatchOperation{
		{Op: "replace", Path: "/counter", Value: 2},
		{Op: "add", Path: "/items/-", Value: "b"},
		{Op: "remove", Path: "/user/name"},
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(next, &got))
	assert.Equal(t, float64(2), got["counter"])
	assert.Equal(t, []any{"a", "b"}, got["items"])
	assert.Equal(t, map[string]any{}, got["user"])
}

func TestApplyDeltaAllOrNothing(t *testing.T) {
	doc := json.RawMessage(`{"counter":1}`)

	// The first operation would succeed on its own; the second fails, so
	// neither may be visible.
	next, err := ApplyDelta(doc, []events.JSONPatchOperation{
		{Op: "replace", Path: "/counter", Value: 99},
		{Op: "replace", Path: "/missing", Value: 1},
	})
	require.Error(t, err)
	assert.JSONEq(t, `{"counter":1}`, string(next))

	var patchErr *PatchError
	require.ErrorAs(t, err, &patchErr)
	assert.Equal(t, 1, patchErr.Index)
	assert.Equal(t, "/missing", patchErr.Path)
}

func TestApplyDeltaErrorClassification(t *testing.T) {
	doc := json.RawMessage(`{"counter":1,"items":["a"]}`)

	tests := []struct {
		name    string
		op      events.JSONPatchOperation
		wantErr error
	}{
		{
			name:    "replace missing path",
			op:      events.JSONPatchOperation{Op: "replace", Path: "/ghost", Value: 1},
			wantErr: ErrPathNotFound,
		},
		{
			name:    "remove missing path",
			op:      events.JSONPatchOperation{Op: "remove", Path: "/ghost"},
			wantErr: ErrPathNotFound,
		},
		{
			name:    "add under missing parent",
			op:      events.JSONPatchOperation{Op: "add", Path: "/ghost/child", Value: 1},
			wantErr: ErrParentMissing,
		},
		{
			name:    "failed test",
			op:      events.JSONPatchOperation{Op: "test", Path: "/counter", Value: 42},
			wantErr: ErrTestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := ApplyDelta(doc, []events.JSONPatchOperation{tt.op})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.JSONEq(t, string(doc), string(next), "failed delta must leave the document unchanged")
		})
	}
}

func TestApplyDeltaOrderSensitive(t *testing.T) {
	doc := json.RawMessage(`{}`)

	// Later operations see the effects of earlier ones.
	next, err := ApplyDelta(doc, []events.JSONPatchOperation{
		{Op: "add", Path: "/list", Value: []any{}},
		{Op: "add", Path: "/list/-", Value: 1},
		{Op: "add", Path: "/list/-", Value: 2},
		{Op: "test", Path: "/list/1", Value: 2},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"list":[1,2]}`, string(next))
}

func TestApplyDeltaEmptyDocument(t *testing.T) {
	next, err := ApplyDelta(nil, []events.JSONPatchOperation{
		{Op: "add", Path: "/x", Value: 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(next))
}

func TestStoreSnapshotResetsState(t *testing.T) {
	store := NewStore(WithInitialState(json.RawMessage(`{"stale":true}`)))

	require.NoError(t, store.ApplySnapshot(map[string]any{"fresh": 1}))
	assert.JSONEq(t, `{"fresh":1}`, string(store.Raw()))
}

func TestStoreApplyEvent(t *testing.T) {
	store := NewStore()

	handled, err := store.ApplyEvent(events.NewStateSnapshotEvent(map[string]any{"counter": 0}))
	require.NoError(t, err)
	assert.True(t, handled)

	handled, err = store.ApplyEvent(events.NewStateDeltaEvent([]events.JSONPatchOperation{
		{Op: "replace", Path: "/counter", Value: 1},
	}))
	require.NoError(t, err)
	assert.True(t, handled)

	handled, err = store.ApplyEvent(events.NewTextMessageEndEvent("msg-1"))
	require.NoError(t, err)
	assert.False(t, handled, "non-state events pass through untouched")

	var doc map[string]int
	require.NoError(t, store.Unmarshal(&doc))
	assert.Equal(t, 1, doc["counter"])
}

func TestStoreFailedDeltaKeepsState(t *testing.T) {
	store := NewStore(WithInitialState(json.RawMessage(`{"counter":1}`)))

	err := store.ApplyDelta([]events.JSONPatchOperation{
		{Op: "replace", Path: "/missing", Value: 5},
	})
	require.Error(t, err)
	assert.JSONEq(t, `{"counter":1}`, string(store.Raw()))

	// The store stays usable after a contained failure.
	require.NoError(t, store.ApplyDelta([]events.JSONPatchOperation{
		{Op: "replace", Path: "/counter", Value: 2},
	}))
	assert.JSONEq(t, `{"counter":2}`, string(store.Raw()))
}

func TestStoreRawReturnsCopy(t *testing.T) {
	store := NewStore(WithInitialState(json.RawMessage(`{"a":1}`)))

	raw := store.Raw()
	raw[1] = 'x'
	assert.JSONEq(t, `{"a":1}`, string(store.Raw()))
}
