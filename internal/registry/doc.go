// Package registry maps the driver names used in plans to the compiled Go
// functions that implement them.
//
// Driver packages under modules/ implement Module and add themselves with
// RegisterDriver. The application validates the registry once at startup so
// a malformed driver signature fails fast instead of on its first execution.
package registry
