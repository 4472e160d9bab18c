package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific plan loader.
type Loader interface {
	// Load reads every plan file reachable from paths, translates them into
	// the format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter binds raw driver arguments to the Go input structs declared by
// drivers.
type Converter interface {
	// DecodeArguments evaluates args and populates the struct pointed to by
	// input. Fields are matched by their `petal` tag; fields tagged
	// `,optional` may be absent. Arguments that match no field are an error.
	DecodeArguments(ctx context.Context, input any, args map[string]hcl.Expression) error
}
