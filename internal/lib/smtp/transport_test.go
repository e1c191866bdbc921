package smtp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/secure-notes/internal/config"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestTransport_From(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SMTPConfig
		want string
	}{
		{name: "explicit from", cfg: config.SMTPConfig{User: "login@x.com", From: "noreply@x.com"}, want: "noreply@x.com"},
		{name: "falls back to user", cfg: config.SMTPConfig{User: "login@x.com"}, want: "login@x.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewTransport(tt.cfg, newNoopLogger()).From())
		})
	}
}

func TestTransport_Connect_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	tr := NewTransport(config.SMTPConfig{Host: "127.0.0.1", Port: port}, newNoopLogger())
	_, err = tr.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.Connect: dial")
}

func TestTransport_Connect_NoStartTLS(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.WriteString(conn, "220 localhost ESMTP\r\n")
		buf := make([]byte, 512)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			line := string(buf[:n])
			switch {
			case len(line) >= 4 && (line[:4] == "EHLO" || line[:4] == "HELO"):
				_, _ = io.WriteString(conn, "250-localhost\r\n250 SIZE 1024\r\n")
			case len(line) >= 4 && line[:4] == "QUIT":
				_, _ = io.WriteString(conn, "221 bye\r\n")
				return
			default:
				_, _ = io.WriteString(conn, "250 ok\r\n")
			}
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	tr := NewTransport(config.SMTPConfig{Host: "127.0.0.1", Port: port}, newNoopLogger())
	_, err = tr.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTTLS")
}
