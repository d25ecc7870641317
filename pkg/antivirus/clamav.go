// Package antivirus scans uploaded files with a clamd daemon.
package antivirus

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// ErrInfected is returned when clamd reports a signature match.
var ErrInfected = errors.New("file is infected")

// clamd rejects streams above StreamMaxLength (25MB by default)
const maxChunk = 1 << 20

// ClamAV talks to clamd over TCP ("host:3310") or a unix socket path.
type ClamAV struct {
	network string
	address string
	timeout time.Duration
}

func NewClamAV(address string, timeout time.Duration) *ClamAV {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	network := "tcp"
	if strings.HasPrefix(address, "/") {
		network = "unix"
	}
	return &ClamAV{network: network, address: address, timeout: timeout}
}

// Ping checks that clamd answers PONG.
func (c *ClamAV) Ping(ctx context.Context) error {
	reply, err := c.roundTrip(ctx, func(conn net.Conn) error {
		_, err := conn.Write([]byte("zPING\x00"))
		return err
	})
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("unexpected clamd reply %q", reply)
	}
	return nil
}

// Scan streams data with INSTREAM. It returns the threat name wrapped in
// ErrInfected on a match; any other failure is returned as is so callers can
// fail closed.
func (c *ClamAV) Scan(ctx context.Context, data []byte) error {
	reply, err := c.roundTrip(ctx, func(conn net.Conn) error {
		if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
			return err
		}
		size := make([]byte, 4)
		for len(data) > 0 {
			n := len(data)
			if n > maxChunk {
				n = maxChunk
			}
			binary.BigEndian.PutUint32(size, uint32(n))
			if _, err := conn.Write(size); err != nil {
				return err
			}
			if _, err := conn.Write(data[:n]); err != nil {
				return err
			}
			data = data[n:]
		}
		_, err := conn.Write([]byte{0, 0, 0, 0})
		return err
	})
	if err != nil {
		return err
	}

	// "stream: OK", "stream: Eicar-Signature FOUND" or "... ERROR"
	status := strings.TrimSpace(strings.TrimPrefix(reply, "stream:"))
	switch {
	case status == "OK":
		return nil
	case strings.HasSuffix(status, "FOUND"):
		return fmt.Errorf("%w: %s", ErrInfected, strings.TrimSpace(strings.TrimSuffix(status, "FOUND")))
	default:
		return fmt.Errorf("clamd: %s", status)
	}
}

func (c *ClamAV) roundTrip(ctx context.Context, send func(net.Conn) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, c.network, c.address)
	if err != nil {
		return "", fmt.Errorf("failed to connect to clamd: %w", err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)

	if err := send(conn); err != nil {
		return "", fmt.Errorf("failed to send to clamd: %w", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil && len(reply) == 0 {
		return "", fmt.Errorf("failed to read clamd reply: %w", err)
	}
	return strings.TrimRight(string(reply), "\x00\n "), nil
}
