package contract

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Logger().SetOutput(&buf)
	t.Cleanup(func() {
		Logger().SetOutput(os.Stderr)
		SetVerbose(false)
	})
	return &buf
}

func TestLogWarn(t *testing.T) {
	buf := captureLogs(t)
	LogWarn("cache unavailable", errors.New("disk full"))
	assert.Contains(t, buf.String(), "cache unavailable")
	assert.Contains(t, buf.String(), "disk full")
}

func TestLogDebug_OnlyWhenVerbose(t *testing.T) {
	buf := captureLogs(t)

	LogDebug("walk finished", logrus.Fields{"files": 3})
	assert.Empty(t, buf.String())

	SetVerbose(true)
	LogDebug("walk finished", logrus.Fields{"files": 3})
	assert.Contains(t, buf.String(), "walk finished")
	assert.Contains(t, buf.String(), "files=3")
}
