package controllers

import (
	"context"
	"testing"

	"harvester/harvester/services/pipeline"
	"harvester/harvester/utils/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRunner struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingRunner) Run(_ context.Context, _ pipeline.Reporter) types.Summary {
	close(b.started)
	<-b.release
	return types.Summary{RunID: "first"}
}

func TestTriggerRejectsConcurrentRun(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
	ctrl := NewRunsController(runner, nil)

	done := make(chan *types.Summary)
	go func() {
		s, _ := ctrl.Trigger(context.Background())
		done <- s
	}()
	<-runner.started

	_, err := ctrl.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(runner.release)
	first := <-done
	require.NotNil(t, first)
	assert.Equal(t, "first", first.RunID)
}

func TestListWithoutArchive(t *testing.T) {
	ctrl := NewRunsController(&blockingRunner{}, nil)
	_, err := ctrl.List(context.Background(), 10)
	assert.ErrorIs(t, err, ErrArchiveDisabled)
}
