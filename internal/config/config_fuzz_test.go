package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// FuzzLoadConfig tests configuration loading with malformed YAML inputs.
func FuzzLoadConfig(f *testing.F) {
	f.Add(`paths:
  src_dir: src
  build_dir: build
dist:
  workers: 4`)
	f.Add(`dist:
  workers: "many"`)
	f.Add(`dist:
  workers: -1`)
	f.Add(`log:
  level: loud`)
	f.Add(`malformed: yaml: content`)
	f.Add(``)

	f.Fuzz(func(t *testing.T, yamlContent string) {
		if len(yamlContent) > 50000 {
			t.Skip("Config content too large")
		}

		v := viper.New()
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
			return
		}

		cfg, err := LoadFrom(v)
		if err != nil {
			return
		}

		if cfg.Dist.Workers < 1 {
			t.Errorf("accepted non-positive worker count %d", cfg.Dist.Workers)
		}
		if cfg.Paths.SrcDir == "" || cfg.Paths.BuildDir == "" {
			t.Errorf("accepted empty directory: %+v", cfg.Paths)
		}
	})
}

// FuzzResolvePath checks resolved paths are absolute and stable.
func FuzzResolvePath(f *testing.F) {
	for _, seed := range []string{"src", "./build/", "~/templates", "/tmp/dist//", "a/../b"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, path string) {
		resolved, err := ResolvePath(path)
		if err != nil {
			return
		}

		again, err := ResolvePath(resolved)
		if err != nil {
			t.Fatalf("resolving %q again: %v", resolved, err)
		}
		if again != resolved {
			t.Errorf("not idempotent: %q -> %q -> %q", path, resolved, again)
		}
	})
}
