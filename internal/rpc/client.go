package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// Client dials annad's unix socket and performs one request per call.
// Each Call opens a fresh connection, matching the server's
// one-request-per-connection protocol.
type Client struct {
	socketPath string
	dialer     net.Dialer
}

// NewClient builds a Client for the given socket path.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, dialer: net.Dialer{Timeout: DefaultDialTimeout}}
}

// Call sends method with args and decodes the response's Data into
// out (out may be nil to discard the payload). Returns an error
// wrapping Response.Error when the server reports failure.
func (c *Client) Call(ctx context.Context, method Method, args any, out any) error {
	conn, err := c.dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("rpc: dial %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	var rawArgs json.RawMessage
	if args != nil {
		rawArgs, err = json.Marshal(args)
		if err != nil {
			return fmt.Errorf("rpc: marshal args: %w", err)
		}
	}

	req := Request{ID: uuid.NewString(), Method: method, Args: rawArgs}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("rpc: marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("rpc: write request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return fmt.Errorf("rpc: read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return fmt.Errorf("rpc: decode response: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("rpc: %s (%s)", resp.Error, resp.Code)
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("rpc: decode response data: %w", err)
		}
	}
	return nil
}

// DefaultDialTimeout bounds how long Call waits to establish the
// unix-socket connection before giving up.
const DefaultDialTimeout = 3 * time.Second
