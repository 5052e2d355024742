package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"syscall"
	"time"
)

// ErrDaemonNotRunning indicates the daemon socket is missing or refusing
// connections.
var ErrDaemonNotRunning = errors.New("daemon not running")

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		if IsUnavailable(err) {
			return nil, fmt.Errorf("%w (start it with shortsd): %v", ErrDaemonNotRunning, err)
		}
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// IsUnavailable reports whether err means nothing is listening on the socket.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrDaemonNotRunning) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, req, resp any) error {
	call := c.client.Go("Shorts."+method, req, resp, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		return call.Error
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Generate submits a short generation request.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.call(ctx, "Generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Job returns a single job.
func (c *Client) Job(ctx context.Context, id int64) (*JobResponse, error) {
	var resp JobResponse
	if err := c.call(ctx, "Job", JobRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns jobs optionally filtered by statuses.
func (c *Client) List(ctx context.Context, statuses []string) (*ListResponse, error) {
	var resp ListResponse
	if err := c.call(ctx, "List", ListRequest{Statuses: statuses}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Preview requests a still frame.
func (c *Client) Preview(ctx context.Context, req PreviewRequest) (*PreviewResponse, error) {
	var resp PreviewResponse
	if err := c.call(ctx, "Preview", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call(ctx, "Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to exit.
func (c *Client) Stop(ctx context.Context) (*StopResponse, error) {
	var resp StopResponse
	if err := c.call(ctx, "Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
