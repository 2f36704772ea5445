package obs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitLoggerParsesLevel(t *testing.T) {
	cases := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"info", "info", zerolog.InfoLevel},
		{"debug", "debug", zerolog.DebugLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"unrecognized level falls back to info", "bogus", zerolog.InfoLevel},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			InitLogger(c.level)
			if got := zerolog.GlobalLevel(); got != c.expected {
				t.Errorf("expected level %v, got %v", c.expected, got)
			}
		})
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	logger := Logger("journalsrv")

	if logger.GetLevel() == zerolog.Disabled {
		t.Error("component logger should not be disabled")
	}

	var buf bytes.Buffer
	logger.Output(&buf).Error().Msg("probe")
	if !strings.Contains(buf.String(), `"component":"journalsrv"`) {
		t.Errorf("expected component field in log output, got %q", buf.String())
	}
}

