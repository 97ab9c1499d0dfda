// Package main implements the autosv-lsp language server binary.
package main

import (
	"context"
	"io"
	"os"

	"go.lsp.dev/jsonrpc2"

	"github.com/autosv/autosv/pkg/config"
	"github.com/autosv/autosv/pkg/logging"
	"github.com/autosv/autosv/pkg/lsp"
)

func main() {
	logger, err := newLogger()
	if err != nil {
		os.Stderr.WriteString("autosv-lsp: failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg, err := config.Load(nil)
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	logger.Info("starting autosv-lsp")

	server, err := lsp.NewServer(lsp.ServerConfig{Logger: logger, Config: cfg})
	if err != nil {
		logger.Error("failed to create server: %v", err)
		os.Exit(1)
	}

	rwc := &stdinoutCloser{stdin: os.Stdin, stdout: os.Stdout}
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server.SetConn(conn, ctx)

	conn.Go(ctx, server.Handler())
	<-conn.Done()

	logger.Info("autosv-lsp stopped")
}

func newLogger() (logging.Logger, error) {
	if os.Getenv("AUTOSV_LSP_DEBUG") != "" {
		return logging.NewDevelopment()
	}
	return logging.New()
}

// stdinoutCloser wraps os.Stdin and os.Stdout as an io.ReadWriteCloser,
// since LSP over stdio never gets a real closable transport.
type stdinoutCloser struct {
	stdin  *os.File
	stdout *os.File
}

func (s *stdinoutCloser) Read(p []byte) (int, error)  { return s.stdin.Read(p) }
func (s *stdinoutCloser) Write(p []byte) (int, error) { return s.stdout.Write(p) }
func (s *stdinoutCloser) Close() error                { return nil }

var _ io.ReadWriteCloser = (*stdinoutCloser)(nil)
