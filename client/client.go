// Package client is a thin wrapper over the framed duplex stream that
// lets a caller Execute a single command and get its response(s).
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package client

import (
	"crypto/tls"
	"net"

	"github.com/kvbus/kvbus/stream"
	"github.com/kvbus/kvbus/wire"
)

// Client holds one open connection to a kvbus server.
type Client struct {
	stream *stream.Stream[*wire.CommandResponse, *wire.CommandRequest]
	conn   net.Conn
}

// Dial opens a plain TCP connection to addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return newClient(conn), nil
}

// DialTLS opens a TLS connection to addr using cfg.
func DialTLS(addr string, cfg *tls.Config) (*Client, error) {
	conn, err := tls.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, err
	}
	return newClient(conn), nil
}

func newClient(conn net.Conn) *Client {
	return &Client{
		stream: stream.New[*wire.CommandResponse, *wire.CommandRequest](conn),
		conn:   conn,
	}
}

// Execute sends req and returns the single response it expects back. For
// SUBSCRIBE, use Send/Recv directly since the server keeps pushing
// responses on that same connection indefinitely.
func (c *Client) Execute(req *wire.CommandRequest) (*wire.CommandResponse, error) {
	if err := c.stream.Send(req); err != nil {
		return nil, err
	}
	return c.stream.Recv()
}

// Send writes a request without waiting for a response; paired with Recv
// for long-lived SUBSCRIBE connections.
func (c *Client) Send(req *wire.CommandRequest) error {
	return c.stream.Send(req)
}

// Recv reads the next response off the connection.
func (c *Client) Recv() (*wire.CommandResponse, error) {
	return c.stream.Recv()
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
