// Package querycache persists a durable summary of query engine runs
// (component C, internal/query) across dadac invocations, the way
// internal/driver's in-memory ModuleCache persists module metadata within a
// single run. It is not one of the checker's nine components — an optional
// layer a driver may open on top of internal/query, never assumed by
// internal/query itself.
package querycache

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy governs how long a cached row survives and how many rows a store
// keeps before evicting, read from a YAML sidecar next to the SQLite cache
// file (kept independent of dada.toml's project config, which governs
// compilation inputs rather than cache bookkeeping).
type Policy struct {
	MaxAge  time.Duration `yaml:"-"`
	MaxRows int           `yaml:"max_rows"`

	// MaxAgeSeconds is the wire form of MaxAge; YAML has no native duration
	// scalar, so the sidecar spells it out in seconds.
	MaxAgeSeconds int64 `yaml:"max_age_seconds"`
}

// DefaultPolicy matches what a fresh project with no cache-policy.yaml gets:
// a week of rows, capped at a few thousand.
func DefaultPolicy() Policy {
	return Policy{MaxAge: 7 * 24 * time.Hour, MaxRows: 4096, MaxAgeSeconds: int64((7 * 24 * time.Hour).Seconds())}
}

// LoadPolicy reads policy from path, falling back to DefaultPolicy when the
// sidecar doesn't exist (a missing policy file is not an error — most
// projects never need to tune cache eviction).
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPolicy(), nil
	}
	if err != nil {
		return Policy{}, fmt.Errorf("querycache: reading policy %s: %w", path, err)
	}

	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("querycache: parsing policy %s: %w", path, err)
	}
	p.MaxAge = time.Duration(p.MaxAgeSeconds) * time.Second
	if p.MaxRows <= 0 {
		p.MaxRows = DefaultPolicy().MaxRows
	}
	return p, nil
}
