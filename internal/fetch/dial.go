package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"time"
)

// Dialer opens a byte stream to the target. https targets come back already wrapped in TLS.
type Dialer interface {
	Dial(ctx context.Context, target ParsedURL) (io.ReadWriteCloser, error)
}

// NetDialer dials TCP and wraps https connections in a TLS client using the host as SNI.
// Timeout bounds the connect, the handshake and every read on the returned stream.
type NetDialer struct {
	Timeout   time.Duration
	TLSConfig *tls.Config
}

func (d NetDialer) Dial(ctx context.Context, target ParsedURL) (io.ReadWriteCloser, error) {
	addr := target.Address()
	nd := net.Dialer{Timeout: d.Timeout}
	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Addr: addr, Err: err}
	}
	if d.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(d.Timeout)); err != nil {
			_ = conn.Close()
			return nil, &ConnectionError{Op: "deadline", Addr: addr, Err: err}
		}
	}
	if target.Scheme != SchemeHTTPS {
		return &deadlineConn{Conn: conn, timeout: d.Timeout}, nil
	}

	cfg := &tls.Config{}
	if d.TLSConfig != nil {
		cfg = d.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = target.Host
	}
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Op: "tls handshake", Addr: addr, Err: err}
	}
	return &deadlineConn{Conn: tlsConn, timeout: d.Timeout}, nil
}

// deadlineConn pushes the read deadline forward on every read so Timeout
// applies to idle gaps rather than the whole transfer.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if c.timeout > 0 {
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.timeout))
	}
	return c.Conn.Read(p)
}
