package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLazyLogger_FollowsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	l := Logger("core/swarm")

	var buf bytes.Buffer
	SetDefault(New(&buf, &slog.HandlerOptions{Level: LevelDebug}))
	l.Debug("frame received", "size", 3)

	out := buf.String()
	if !strings.Contains(out, "component=core/swarm") {
		t.Errorf("output missing component: %q", out)
	}
	if !strings.Contains(out, "size=3") {
		t.Errorf("output missing attr: %q", out)
	}

	var jsonBuf bytes.Buffer
	SetDefault(NewJSON(&jsonBuf, nil))
	l.Info("switched")
	if !strings.Contains(jsonBuf.String(), `"component":"core/swarm"`) {
		t.Errorf("json output missing component: %q", jsonBuf.String())
	}
	if l.Component() != "core/swarm" {
		t.Errorf("Component() = %q", l.Component())
	}
}
