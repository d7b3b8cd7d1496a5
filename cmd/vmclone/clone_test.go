package main

import (
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIDHook(t *testing.T) {
	logger := log.New()
	logger.Out = io.Discard
	logger.SetLevel(log.DebugLevel)
	logger.AddHook(runIDHook{id: "3f1c0e2a"})
	recorded := test.NewLocal(logger)

	logger.Debug("plain line")
	logger.WithField("task", "task-100").Info("field line")

	entries := recorded.AllEntries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "3f1c0e2a", e.Data["run"], e.Message)
	}
	assert.Equal(t, "task-100", entries[1].Data["task"])
}
