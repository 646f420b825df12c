package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptions_RenamesErrorKey(t *testing.T) {
	opts := options(slog.LevelInfo)
	attr := opts.ReplaceAttr(nil, slog.String("error", "boom"))
	assert.Equal(t, "err", attr.Key)

	attr = opts.ReplaceAttr(nil, slog.String("node_id", "a"))
	assert.Equal(t, "node_id", attr.Key)
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &slog.JSONHandler{}, ForFormat("json", slog.LevelInfo).Handler())
	assert.IsType(t, &slog.TextHandler{}, ForFormat("text", slog.LevelInfo).Handler())
}
