package breaker

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	functionerrors "github.com/crossplane/function-kubecore-schema-registry/pkg/errors"
)

func TestExecuteSuccessPassesResultThrough(t *testing.T) {
	p := NewPool(3, time.Minute)

	result, err := p.Execute("XApp", func() (interface{}, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestExecutePropagatesUnderlyingError(t *testing.T) {
	p := NewPool(3, time.Minute)
	boom := stderrors.New("boom")

	_, err := p.Execute("XApp", func() (interface{}, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestExecuteOpensAfterConsecutiveFailures(t *testing.T) {
	p := NewPool(2, time.Minute)
	boom := stderrors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := p.Execute("XKubeCluster", func() (interface{}, error) {
			return nil, boom
		})
		assert.Error(t, err)
	}

	_, err := p.Execute("XKubeCluster", func() (interface{}, error) {
		return "should not run", nil
	})

	require.Error(t, err)
	assert.True(t, functionerrors.IsErrorCode(err, functionerrors.ErrorCodeCircuitBreakerOpen))
}

func TestSnapshotReportsPerKindState(t *testing.T) {
	p := NewPool(5, time.Minute)

	p.Execute("XApp", func() (interface{}, error) { return "ok", nil })
	p.Execute("XKubEnv", func() (interface{}, error) { return nil, stderrors.New("boom") })

	snap := p.Snapshot()

	require.Contains(t, snap, "XApp")
	require.Contains(t, snap, "XKubEnv")
	assert.Equal(t, "closed", snap["XApp"].State)
	assert.Equal(t, int64(1), snap["XKubEnv"].FailureCount)
}

func TestSnapshotEmptyBeforeAnyExecute(t *testing.T) {
	p := NewPool(5, time.Minute)
	assert.Empty(t, p.Snapshot())
}
