package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	t.Run("JSON at warn", func(t *testing.T) {
		var buf bytes.Buffer
		logger := setupLogger(&buf, "warn", "json")
		if logger.Enabled(context.Background(), -4) {
			t.Error("debug enabled at warn level")
		}
		logger.Warn("Event version moved.", "event", "e1")

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("log line %q is not JSON: %v", buf.String(), err)
		}
		if line["event"] != "e1" {
			t.Errorf("log line = %v", line)
		}
	})

	t.Run("Text defaults to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := setupLogger(&buf, "", "")
		logger.Debug("hidden")
		logger.Info("shown")
		if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
			t.Errorf("text log output = %q", out)
		}
	})
}
