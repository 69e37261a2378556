package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleOnly(t *testing.T) {

	var buf bytes.Buffer

	log, closeFn, err := New(Options{Writer: &buf})
	require.NoError(t, err)
	defer closeFn()

	log.Debug("hidden")
	log.Info("images stage complete", "images", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "images stage complete")
	assert.Contains(t, out, "images=2")
}

func TestNewDebug(t *testing.T) {

	var buf bytes.Buffer

	log, _, err := New(Options{Writer: &buf, Debug: true})
	require.NoError(t, err)

	log.Debug("annotated image", "image", "a.jpg")
	assert.Contains(t, buf.String(), "annotated image")
}

func TestNewWithFile(t *testing.T) {

	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "yolo2coco.log")

	log, closeFn, err := New(Options{Writer: &buf, File: path})
	require.NoError(t, err)

	log.With("module", "test").Warn("skipping image", "file", "b.jpg")
	require.NoError(t, closeFn())

	assert.Contains(t, buf.String(), "skipping image")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "skipping image", rec["msg"])
	assert.Equal(t, "test", rec["module"])
	assert.Equal(t, "b.jpg", rec["file"])
}
