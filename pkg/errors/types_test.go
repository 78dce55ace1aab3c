package errors

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionErrorMessage(t *testing.T) {
	ref := ResourceRef{Kind: "XApp", Namespace: "team-a", Name: "checkout"}
	err := NotFoundError(ref)

	assert.Contains(t, err.Error(), "resource XApp/team-a/checkout")
	assert.Contains(t, err.Error(), string(ErrorCodeNotFound))
	assert.Contains(t, err.Error(), "resource not found")
}

func TestFunctionErrorMessageClusterScoped(t *testing.T) {
	ref := ResourceRef{Kind: "XGitHubProvider", Name: "acme"}
	err := ForbiddenError(ref)

	assert.Contains(t, err.Error(), "resource XGitHubProvider/acme")
}

func TestWrapPreservesFunctionErrorCode(t *testing.T) {
	base := TimeoutError(ResourceRef{Kind: "XApp", Name: "checkout"}, 5*time.Second)
	wrapped := Wrap(base, "fetch failed")

	require.True(t, IsErrorCode(wrapped, ErrorCodeTimeout))

	fe, ok := wrapped.(*FunctionError)
	require.True(t, ok)
	assert.Equal(t, base, fe.Cause)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "message"))
	assert.Nil(t, Wrapf(nil, "message %d", 1))
}

func TestWrapNonFunctionErrorFallsBackToPkgErrors(t *testing.T) {
	plain := stderrors.New("boom")
	wrapped := Wrap(plain, "context")

	require.Error(t, wrapped)
	_, isFunctionError := wrapped.(*FunctionError)
	assert.False(t, isFunctionError)
	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(wrapped))
	assert.False(t, IsErrorCode(wrapped, ErrorCodeTimeout))
}

func TestIsErrorCodeUnwindsCauseChain(t *testing.T) {
	inner := CircuitBreakerOpenError("XKubeCluster")
	outer := Wrap(Wrap(inner, "search failed"), "hop failed")

	assert.True(t, IsErrorCode(outer, ErrorCodeCircuitBreakerOpen))
	assert.False(t, IsErrorCode(outer, ErrorCodeNotFound))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(TransientError("connection reset")))
	assert.True(t, IsRetryable(TimeoutError(ResourceRef{Kind: "XApp", Name: "a"}, time.Second)))
	assert.False(t, IsRetryable(NotFoundError(ResourceRef{Kind: "XApp", Name: "a"})))
	assert.False(t, IsRetryable(stderrors.New("unrelated")))
}

func TestWithContextInitializesMapWhenNil(t *testing.T) {
	err := &FunctionError{Code: ErrorCodeInternalError, Message: "boom"}
	err.WithContext("key", "value")

	assert.Equal(t, "value", err.Context["key"])
}

func TestCircularDependencyErrorJoinsChain(t *testing.T) {
	err := CircularDependencyError([]string{"XApp/a", "XKubEnv/b", "XApp/a"})
	assert.Equal(t, "XApp/a -> XKubEnv/b -> XApp/a", err.Context["chain"])
}
