package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/anisan-cli/playtrack/constant"
	"github.com/anisan-cli/playtrack/log"
	"github.com/samber/lo"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV is a Backend speaking mpv's JSON-IPC protocol.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv exits
	mu         sync.Mutex    // serializes socket writes
}

// NewMPV creates an idle mpv backend.
func NewMPV() *MPV {
	return &MPV{
		exited: make(chan struct{}),
	}
}

// Start launches an idle mpv listening on a fresh IPC socket. Files are played with Load,
// so observers can attach before the first file is loaded.
func (m *MPV) Start(title string, headers map[string]string) error {
	if m.IsRunning() {
		return nil
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Playtrack, randomBytes))

	m.cmd = exec.Command("mpv", buildArgs(m.socketPath, sanitizeTitle(title), headers)...)
	m.cmd.SysProcAttr = sysProcAttr()

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = m.cmd.Process.Kill()
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return nil
}

// Load replaces whatever is playing with target.
func (m *MPV) Load(target string) error {
	safe, err := sanitizeMediaTarget(target)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if _, err := m.command("loadfile", safe, "replace"); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}

	return nil
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	errExited := errors.New("mpv exited before its socket was ready")

	_, _, err := lo.AttemptWithDelay(socketWaitRetries, socketWaitDelay, func(int, time.Duration) error {
		select {
		case <-m.exited:
			return errExited
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err != nil {
			return err
		}

		return conn.Close()
	})

	if errors.Is(err, errExited) {
		return errExited
	}

	return err
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.command("get_property", "pid")
	return err == nil
}

// Close quits mpv, killing it when it does not exit in time.
func (m *MPV) Close() error {
	if m.socketPath == "" {
		return nil
	}

	_, _ = m.command("quit")

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)

	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// sanitizeMediaTarget accepts http(s) URLs and local paths, nothing that mpv could read as a flag.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-'")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle flattens the title to one IPC-safe line.
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}

// Version asks mpv for its version string.
func (m *MPV) Version() (string, error) {
	data, err := m.command("get_property", "mpv-version")
	if err != nil {
		return "", err
	}

	version, ok := data.(string)
	if !ok {
		return "", fmt.Errorf("mpv-version: expected string, got %T", data)
	}

	return version, nil
}

// buildArgs passes only the socket, title and headers so the user's mpv.conf stays in charge.
func buildArgs(socket, title string, headers map[string]string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socket),
		fmt.Sprintf("--force-media-title=%s", title),
		fmt.Sprintf("--title=%s", title),
		"--force-window=yes",
		"--idle=yes",
	}

	if len(headers) > 0 {
		keys := lo.Keys(headers)
		slices.Sort(keys)

		fields := lo.Map(keys, func(k string, _ int) string {
			return fmt.Sprintf("%s: %s", k, strings.ReplaceAll(headers[k], ",", "%2C"))
		})
		args = append(args, fmt.Sprintf("--http-header-fields=%s", strings.Join(fields, ",")))
	}

	return args
}
