package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/cacheaside"
)

func TestLogrusLogger(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Debug("write skipped (deadline passed)", cacheaside.Fields{"key": "ns:k"})
	l.Error("boom", nil)

	require.Len(t, hook.Entries, 2)
	first := hook.Entries[0]
	assert.Equal(t, logrus.DebugLevel, first.Level)
	assert.Equal(t, "ns:k", first.Data["key"])
	assert.Equal(t, "cacheaside", first.Data["component"])
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
