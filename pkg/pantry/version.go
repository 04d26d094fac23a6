// Package pantry is the public entry point: the release version and the
// backend factory.
package pantry

// Version is the release version of the pantry module.
const Version = "0.3.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/pantry"
