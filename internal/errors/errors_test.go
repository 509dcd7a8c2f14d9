package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesKind(t *testing.T) {
	base := NewKind(SearchFailed, "query failed")
	wrapped := Wrap(base, "resolving search stage")

	assert.True(t, IsSearchFailure(wrapped))
	assert.Contains(t, wrapped.Error(), "resolving search stage")
	assert.Contains(t, wrapped.Error(), "query failed")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}

func TestSuperseded(t *testing.T) {
	assert.True(t, IsSuperseded(ErrSuperseded))
	assert.True(t, IsSuperseded(Wrap(ErrSuperseded, "open active file")))
	assert.False(t, IsSuperseded(New("plain")))
}

func TestFileError(t *testing.T) {
	err := NewFileError("move failed", "/Inbox/A.md", FileOperationFailed, fmt.Errorf("disk full"))
	assert.Equal(t, "/Inbox/A.md", err.Path())
	assert.Contains(t, err.Error(), "move failed: /Inbox/A.md: disk full")
}

func TestBatchError(t *testing.T) {
	assert.NoError(t, NewBatchError("move", nil))

	err := NewBatchError("move", []ItemFailure{
		{Path: "/a.md", Err: New("collision")},
		{Path: "/b.md", Err: New("denied")},
	})
	require.Error(t, err)
	assert.True(t, IsBatchError(err))
	assert.Contains(t, err.Error(), "2 item(s)")
	assert.Contains(t, err.Error(), "/a.md")
}
