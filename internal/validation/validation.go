// Package validation checks request payloads against the JSON schemas embedded
// under schemas/.
package validation

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/interviewdesk/internal/apperr"
)

const (
	SchemaTask     = "task"
	SchemaCriteria = "criteria"
	SchemaScores   = "scores"
	SchemaResult   = "result"
)

//go:embed schemas/*.json
var embedded embed.FS

// Validator holds compiled schemas keyed by file name without extension.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// Load compiles every schemas/*.json file of fsys.
func Load(fsys fs.FS) (*Validator, error) {
	names, err := fs.Glob(fsys, "schemas/*.json")
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, n := range names {
		raw, err := fs.ReadFile(fsys, n)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", n, err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(raw, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", n, err)
		}
		v.schemas[strings.TrimSuffix(path.Base(n), ".json")] = rs
	}
	return v, nil
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// Default returns the validator over the embedded schemas.
func Default() *Validator {
	defaultOnce.Do(func() {
		v, err := Load(embedded)
		if err != nil {
			panic(err)
		}
		defaultV = v
	})
	return defaultV
}

// Validate checks body against the named schema. Violations come back as a
// validation error listing each failing path.
func (v *Validator) Validate(ctx context.Context, name string, body []byte) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("no schema named %s", name)
	}
	verrs, err := s.ValidateBytes(ctx, body)
	if err != nil {
		return apperr.Validation("MALFORMED_JSON", "request body is not valid JSON")
	}
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(verrs))
	for _, ke := range verrs {
		p := ke.PropertyPath
		if p == "" {
			p = "/"
		}
		msgs = append(msgs, p+": "+ke.Message)
	}
	return apperr.Validation("INVALID_PAYLOAD", "%s", strings.Join(msgs, "; "))
}
