package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafelyRecoversPanics(t *testing.T) {
	err := safely("step", func() error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step: panic: boom")

	assert.NoError(t, safely("ok", func() error { return nil }))
}

func TestHostErrorUnwraps(t *testing.T) {
	cause := errors.New("device lost")
	err := hostErr("capture.stop", cause)

	var he *HostError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "capture.stop", he.Op)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "capture.stop")
}
