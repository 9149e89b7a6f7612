//go:build !windows

package ipc

import (
	"net"
	"os"
	"path/filepath"
)

func socketPath() string {
	// Linux: prefer XDG_RUNTIME_DIR
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "snipsave.sock")
	}
	// macOS / fallback
	return filepath.Join(os.TempDir(), "snipsave.sock")
}

// cleanupStale removes a socket file left by a crashed run. Only called
// after a failed dial, so nothing is listening on it.
func cleanupStale(path string) {
	_ = os.Remove(path)
}

// The listener unlinks the socket file on Close.
func listenIPC(path string) (net.Listener, error) {
	return net.Listen("unix", path)
}

func dialIPC(path string) (net.Conn, error) {
	return net.Dial("unix", path)
}
