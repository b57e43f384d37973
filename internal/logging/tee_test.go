package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(nil, inner); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsPerHandlerLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	info := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debug := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h := newTeeHandler(info, debug)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee enabled for debug when one handler accepts it")
	}

	slog.New(h).Debug("scan detail")
	if infoBuf.Len() != 0 {
		t.Fatal("info handler should not receive debug records")
	}
	if debugBuf.Len() == 0 {
		t.Fatal("debug handler should receive debug records")
	}
}

func TestTeeHandlerWithAttrsAndGroup(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newTeeHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "catalog")}).WithGroup("index"))
	logger.Info("indexed", slog.Int("records", 3))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !bytes.Contains(buf.Bytes(), []byte(`"component":"catalog"`)) {
			t.Fatalf("buffer %d missing component attr: %s", i, buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"index":{"records":3}`)) {
			t.Fatalf("buffer %d missing grouped attr: %s", i, buf.String())
		}
	}
}

func TestTeeLogger(t *testing.T) {
	var baseBuf, teeBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))

	TeeLogger(base, slog.NewJSONHandler(&teeBuf, nil)).Info("teed")
	if baseBuf.Len() == 0 || teeBuf.Len() == 0 {
		t.Fatalf("expected output in both buffers, base=%q tee=%q", baseBuf.String(), teeBuf.String())
	}

	teeBuf.Reset()
	TeeLogger(nil, slog.NewJSONHandler(&teeBuf, nil)).Info("no base")
	if teeBuf.Len() == 0 {
		t.Fatal("expected output with nil base")
	}
}

func TestTeeHandlerFlattensNestedTees(t *testing.T) {
	var a, b, c bytes.Buffer
	inner := newTeeHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))
	outer := newTeeHandler(inner, slog.NewJSONHandler(&c, nil))

	tee, ok := outer.(*teeHandler)
	if !ok || len(tee.children) != 3 {
		t.Fatalf("expected three flattened children, got %#v", outer)
	}
	slog.New(outer).Warn("flattened")
	for i, buf := range []*bytes.Buffer{&a, &b, &c} {
		if buf.Len() == 0 {
			t.Fatalf("buffer %d received nothing", i)
		}
	}
}
