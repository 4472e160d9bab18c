// Package config defines the format-agnostic model of a harvesting plan and
// the interfaces a concrete format (HCL, see internal/hcl) implements to
// produce it and to bind driver arguments to Go structs.
package config
