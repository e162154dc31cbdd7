package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLogFailureReportsError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logFailure(logger, "stop plugin watcher", func() error { return errors.New("watcher already closed") })

	out := buf.String()
	require.Contains(t, out, `"level":"error"`)
	require.Contains(t, out, `"step":"stop plugin watcher"`)
	require.Contains(t, out, "watcher already closed")
}

func TestLogFailureQuietOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	logFailure(zerolog.New(&buf), "close shell", func() error { return nil })
	require.Empty(t, buf.String())
}
