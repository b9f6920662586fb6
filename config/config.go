// Package config loads the tuning knobs a host applies to a
// kcp.Session at construction time, the same yaml-file-plus-defaults
// idiom the rest of this codebase's config package used, backed by
// gopkg.in/yaml.v3 instead of hand-rolled flag parsing.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Clouded-Sabre/swift-kcp/kcp"
)

// Config mirrors the subset of Session knobs a host is expected to
// tune per deployment: MTU, windows, the nodelay/resend/nc triple, and
// the dead-link and fast-ack-conservatism toggles.
type Config struct {
	MTU      int  `yaml:"mtu"`
	SndWnd   int  `yaml:"snd_wnd"`
	RcvWnd   int  `yaml:"rcv_wnd"`
	Interval int  `yaml:"interval"`
	NoDelay  int  `yaml:"nodelay"`
	Resend   int  `yaml:"resend"`
	NoCwnd   bool `yaml:"nocwnd"`
	Stream   bool `yaml:"stream"`

	FastLimit    int    `yaml:"fast_limit"`
	DeadLink     uint32 `yaml:"dead_link"`
	Conservative bool   `yaml:"conservative_fastack"`
}

// DefaultConfig returns the same defaults New already applies to a
// bare Session, so a Config loaded from an empty file (which starts
// from these defaults) is a no-op once Apply runs.
func DefaultConfig() *Config {
	return &Config{
		MTU:       1400,
		SndWnd:    32,
		RcvWnd:    128,
		Interval:  100,
		NoDelay:   0,
		Resend:    0,
		NoCwnd:    false,
		Stream:    false,
		FastLimit: 5,
		DeadLink:  20,
	}
}

// ReadConfig loads a Config from a YAML file, falling back to
// DefaultConfig for any field the file omits.
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Apply pushes every knob onto an already-constructed Session. It is
// the only place config touches the kcp package, keeping Config a
// plain data holder otherwise.
func (c *Config) Apply(s *kcp.Session) {
	if c.MTU > 0 {
		_ = s.SetMTU(c.MTU)
	}
	s.SetWindowSize(uint32(c.SndWnd), uint32(c.RcvWnd))
	s.SetInterval(c.Interval)
	s.NoDelay(c.NoDelay, -1, c.Resend, c.NoCwnd)
	s.SetStreamMode(c.Stream)
	s.SetFastLimit(c.FastLimit)
	if c.DeadLink > 0 {
		s.SetDeadLink(c.DeadLink)
	}
	s.SetFastAckConserve(c.Conservative)
}
