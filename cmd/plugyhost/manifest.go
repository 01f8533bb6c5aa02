package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ManifestEntry describes one plugin to load: a stable name and the path to
// its compiled Wasm module. It doubles as the plugin descriptor the
// runtime attaches to the instance (spec.md §3, "Plugin descriptor D") —
// this CLI has no richer per-tenant data to carry, so the manifest entry
// itself is all a context-service handler needs to recover.
type ManifestEntry struct {
	Name string `yaml:"name" validate:"required"`
	Path string `yaml:"path" validate:"required"`
}

// Manifest is a YAML document whose "plugins" key lists the plugins, parsed the way the teacher's
// infrastructure/parser.YamlManifestParser parses a plugin manifest.
type Manifest struct {
	Plugins []ManifestEntry `yaml:"plugins" validate:"required,min=1,dive"`
}

var validate = validator.New()

// loadManifest reads and validates a manifest file.
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

func (m *Manifest) entry(name string) (ManifestEntry, error) {
	for _, e := range m.Plugins {
		if e.Name == name {
			return e, nil
		}
	}
	return ManifestEntry{}, fmt.Errorf("no plugin named %q in manifest", name)
}

// fileLoader implements runtime.Loader[ManifestEntry] for one manifest
// entry, the concrete counterpart to the teacher's host.Loader reading a
// YAML-described plugin before instantiating it.
type fileLoader struct {
	entry ManifestEntry
}

func (l *fileLoader) Bytes(_ context.Context) ([]byte, error) { return os.ReadFile(l.entry.Path) }
func (l *fileLoader) Name() string                            { return l.entry.Name }
func (l *fileLoader) Descriptor() ManifestEntry                { return l.entry }
