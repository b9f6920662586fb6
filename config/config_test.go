package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Clouded-Sabre/swift-kcp/kcp"
)

func TestReadConfigAppliesOverridesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tune.yaml")
	body := "mtu: 512\nsnd_wnd: 16\nnodelay: 1\nresend: 2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.MTU != 512 {
		t.Errorf("MTU = %d, want 512", cfg.MTU)
	}
	if cfg.SndWnd != 16 {
		t.Errorf("SndWnd = %d, want 16", cfg.SndWnd)
	}
	if cfg.RcvWnd != DefaultConfig().RcvWnd {
		t.Errorf("RcvWnd should keep its default when the file omits it")
	}
}

func TestApplyPushesKnobsOntoSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MTU = 600
	cfg.SndWnd, cfg.RcvWnd = 8, 200

	s := kcp.New(1, nil)
	cfg.Apply(s)

	if got := s.GetMTU(); got != 600 {
		t.Errorf("GetMTU() = %d, want 600", got)
	}
	snd, rcv := s.GetWindowSize()
	if snd != 8 || rcv != 200 {
		t.Errorf("GetWindowSize() = (%d, %d), want (8, 200)", snd, rcv)
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if _, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
