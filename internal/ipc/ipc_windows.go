//go:build windows

package ipc

import (
	"net"
	"os"
	"time"

	"github.com/Microsoft/go-winio"
)

const pipePrefix = `\\.\pipe\snipsave`

func socketPath() string {
	if u := os.Getenv("USERNAME"); u != "" {
		return pipePrefix + "-" + u
	}
	return pipePrefix
}

// Named pipes vanish with their last handle; nothing to clean up.
func cleanupStale(string) {}

func listenIPC(path string) (net.Listener, error) {
	return winio.ListenPipe(path, nil)
}

func dialIPC(path string) (net.Conn, error) {
	timeout := 500 * time.Millisecond
	return winio.DialPipe(path, &timeout)
}
