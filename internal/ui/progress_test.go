package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards bytes.Buffer against the animation goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestProgressIndicator_NonInteractiveIsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressIndicator(&buf, false)

	p.StartSpinner("Waiting for cluster")
	p.Update("still waiting")
	p.StopSpinner("ready")

	assert.Empty(t, buf.String())
}

func TestProgressIndicator_QuietIsSilent(t *testing.T) {
	buf := &syncBuffer{}
	p := &ProgressIndicator{output: buf, quiet: true, interactive: true}

	p.StartSpinner("Waiting for cluster")
	p.StopSpinnerWithError("failed")

	assert.Empty(t, buf.String())
}

func TestProgressIndicator_Interactive(t *testing.T) {
	buf := &syncBuffer{}
	p := &ProgressIndicator{output: buf, interactive: true}

	p.StartSpinner("Waiting for cluster")
	require.NotNil(t, p.spinner)
	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "Waiting for cluster")
	}, time.Second, 10*time.Millisecond)

	p.StopSpinner("Cluster is ready")
	assert.Nil(t, p.spinner)
	assert.True(t, strings.HasSuffix(buf.String(), "✓ Cluster is ready\n"))
}

func TestProgressIndicator_StopWithError(t *testing.T) {
	buf := &syncBuffer{}
	p := &ProgressIndicator{output: buf, interactive: true}

	p.StartSpinner("Creating cluster")
	p.StopSpinnerWithError("boom")

	assert.True(t, strings.HasSuffix(buf.String(), "✗ boom\n"))
}

func TestSpinner_StartIsIdempotent(t *testing.T) {
	s := NewSpinner(&syncBuffer{}, "x")
	s.Start()
	s.Start()
	assert.True(t, s.Active())

	s.halt()
	s.halt()
	assert.False(t, s.Active())
}

func TestSpinner_SetMessage(t *testing.T) {
	buf := &syncBuffer{}
	s := NewSpinner(buf, "first")
	s.SetMessage("second")
	s.Start()
	defer s.halt()

	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "second")
	}, time.Second, 10*time.Millisecond)
	assert.NotContains(t, buf.String(), "first")
}
