// Package player drives an external media player and observes its playback over JSON-IPC.
package player

// Backend is a playback process the tracker can observe.
type Backend interface {
	// Start launches the player without loading anything.
	Start(title string, headers map[string]string) error

	// Load plays target in the running player, replacing the current file.
	Load(target string) error

	// Version of the running player binary.
	Version() (string, error)

	// IsRunning validates the liveness of the underlying playback process.
	IsRunning() bool

	// Close terminates the playback engine and releases all associated system resources.
	Close() error

	// Socket retrieves the identifier for the IPC channel.
	Socket() string

	// Wait returns a channel that is closed when the playback session terminates.
	Wait() <-chan struct{}
}

// New returns the backend registered under name.
func New(name string) (Backend, bool) {
	switch name {
	case "mpv":
		return NewMPV(), true
	default:
		return nil, false
	}
}
