package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opd-ai/go-rocket/pkg/logging"
)

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"no path", "", ""},
		{"missing file", filepath.Join(dir, "missing.json"), ""},
		{"malformed file", broken, "loading configuration " + broken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadGameConfig(context.Background(), logging.Discard(), tt.path)
			if tt.wantErr == "" {
				if err != nil || cfg == nil {
					t.Fatalf("loadGameConfig(%q) = %v, %v", tt.path, cfg, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
