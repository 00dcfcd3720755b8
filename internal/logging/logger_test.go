package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, GetLevel("chatty"))
}

func TestOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, Output(LoggerSetupParams{}))

	dir := t.TempDir()
	w := Output(LoggerSetupParams{LogFileName: filepath.Join(dir, "fitcore")})
	rotating, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "fitcore.log"), rotating.Filename)

	_, err := rotating.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, rotating.Close())

	b, err := os.ReadFile(filepath.Join(dir, "fitcore.log"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(b))
}
