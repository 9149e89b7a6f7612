// Package ipc keeps snipsave to one running daemon per user. The daemon
// serves a small gRPC service on a Unix socket (a named pipe on Windows); a
// second `run`, and `snipsave status`, call it for the daemon's status line
// instead of watching the clipboard twice.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrAlreadyRunning is returned by Acquire when another instance answers on
// the socket.
var ErrAlreadyRunning = errors.New("ipc: snipsave is already running")

const queryTimeout = 2 * time.Second

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux / macOS: $XDG_RUNTIME_DIR/snipsave.sock or $TMPDIR/snipsave.sock
//     (override with $SNIPSAVE_SOCKET)
//   - Windows:       \\.\pipe\snipsave-<user>
func SocketPath() string {
	if s := os.Getenv("SNIPSAVE_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether an instance appears to be listening on path.
// It does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := dialIPC(path)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// dial returns a *grpc.ClientConn for the instance on path.
// No auth needed; the socket is local and owner-restricted by the OS.
func dial(path string) (*grpc.ClientConn, error) {
	return grpc.NewClient(
		"passthrough:///snipsave",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return dialIPC(path)
		}),
	)
}

// Query calls Status on the instance listening on path.
func Query(ctx context.Context, path string) (string, error) {
	conn, err := dial(path)
	if err != nil {
		return "", fmt.Errorf("ipc: dial %s: %w", path, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out := new(wrapperspb.StringValue)
	if err := conn.Invoke(ctx, statusMethod, &emptypb.Empty{}, out); err != nil {
		return "", fmt.Errorf("ipc: status: %w", err)
	}
	return out.GetValue(), nil
}

// Instance is the single-instance claim held by a running daemon.
type Instance struct {
	srv *grpc.Server

	once sync.Once
	done chan struct{}
}

// Acquire claims path for this process and serves Status on it. status is
// called for every request. Returns ErrAlreadyRunning if another instance
// answers.
func Acquire(path string, status func() string) (*Instance, error) {
	if IsRunning(path) {
		return nil, ErrAlreadyRunning
	}
	cleanupStale(path)
	ln, err := listenIPC(path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen %s: %w", path, err)
	}

	srv := grpc.NewServer()
	srv.RegisterService(&instanceServiceDesc, statusService{status: status})

	in := &Instance{srv: srv, done: make(chan struct{})}
	go func() {
		defer close(in.done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			slog.Debug("ipc server stopped", "err", err)
		}
	}()
	slog.Debug("ipc socket listening", "path", path)
	return in, nil
}

// Close stops the server and releases the claim.
func (in *Instance) Close() error {
	in.once.Do(func() {
		in.srv.Stop()
		<-in.done
	})
	return nil
}
