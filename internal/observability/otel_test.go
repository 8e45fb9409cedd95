package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/coco-backend/internal/platform/logger"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc , broken, =x, team=coco ")
	if len(got) != 2 || got["api-key"] != "abc" || got["team"] != "coco" {
		t.Fatalf("parseHeaders: got=%v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("parseHeaders(empty): want nil")
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0.25: 0.25, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestDisabledInitIsNoop(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	shutdown := InitOTel(context.Background(), log, OtelConfig{Enabled: false})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	_, span := StartSpan(context.Background(), "test.span")
	EndSpan(span, errors.New("boom"))
}
