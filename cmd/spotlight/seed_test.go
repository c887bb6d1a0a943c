package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/spotlight/internal/store"
)

func TestPrintSeed(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	sigs, err := store.SeedSignals(now)
	if err != nil {
		t.Fatalf("SeedSignals: %v", err)
	}

	var buf bytes.Buffer
	if err := printSeed(&buf, sigs, now); err != nil {
		t.Fatalf("printSeed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "ID") {
		t.Errorf("output should start with the header, got:\n%s", out)
	}
	for _, want := range []string{"Hike Yangmingshan this weekend", "Sarah", "Alex", "1 day ago", "options: Flowers at Zhuzihu"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, fmt.Sprintf("\n%d signals\n", len(sigs))) {
		t.Errorf("output should end with the count, got:\n%s", out)
	}
}
