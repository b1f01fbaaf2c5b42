// Package filesystem is the single afero backend every package reads and writes through.
// Tests swap it for an in-memory one.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the current backend.
func API() afero.Afero {
	return backend
}

// Use replaces the backend.
func Use(fs afero.Fs) {
	backend = afero.Afero{Fs: fs}
}

// SetOsFs restores the real filesystem.
func SetOsFs() {
	Use(afero.NewOsFs())
}

// SetMemMapFs installs an empty in-memory filesystem.
func SetMemMapFs() {
	Use(afero.NewMemMapFs())
}
