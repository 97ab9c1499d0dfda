// Package lsp implements a thin JSON-RPC 2.0 language server over
// go.lsp.dev/jsonrpc2 and go.lsp.dev/protocol: on save of a watched
// SystemVerilog file, it re-runs the AUTO expansion pipeline in lenient
// mode and republishes the run's diagnostics. It also exposes an
// `autosv.expandFile` command for editors that want to trigger
// expansion outside of a save event.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/autosv/autosv/pkg/analyzer"
	"github.com/autosv/autosv/pkg/compilation"
	"github.com/autosv/autosv/pkg/config"
	"github.com/autosv/autosv/pkg/diagnostics"
	"github.com/autosv/autosv/pkg/logging"
	"github.com/autosv/autosv/pkg/svast"
)

// ServerConfig holds the server's dependencies.
type ServerConfig struct {
	Logger logging.Logger
	Config *config.Config
}

// Server implements the autosv language server.
type Server struct {
	cfg    ServerConfig
	logger logging.Logger

	mu    sync.RWMutex
	docs  map[protocol.DocumentURI]string // open-document text, keyed by URI
	conn  jsonrpc2.Conn
	ctx   context.Context
}

// NewServer creates a Server ready to handle a JSON-RPC connection.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNoOp()
	}
	if cfg.Config == nil {
		loaded, err := config.Load(nil)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}
		cfg.Config = loaded
	}
	return &Server{cfg: cfg, logger: cfg.Logger, docs: make(map[protocol.DocumentURI]string)}, nil
}

// SetConn stores the connection used to push notifications (diagnostics)
// back to the client.
func (s *Server) SetConn(conn jsonrpc2.Conn, ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
	s.ctx = ctx
}

// Handler returns a jsonrpc2 handler that routes every LSP method this
// server understands.
func (s *Server) Handler() jsonrpc2.Handler {
	return jsonrpc2.ReplyHandler(s.handleRequest)
}

func (s *Server) handleRequest(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Debug("lsp: received %s", req.Method())

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		return reply(ctx, nil, nil)
	case "exit":
		return reply(ctx, nil, nil)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didSave":
		return s.handleDidSave(ctx, reply, req)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(ctx, reply, req)
	default:
		s.logger.Debug("lsp: unhandled method %s", req.Method())
		return reply(ctx, nil, nil)
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("invalid initialize params: %w", err))
	}

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{"autosv.expandFile"},
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: "autosv-lsp", Version: "0.1.0"},
	}
	s.logger.Info("lsp: initialized")
	return reply(ctx, result, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	s.mu.Lock()
	s.docs[params.TextDocument.URI] = params.TextDocument.Text
	s.mu.Unlock()
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	if len(params.ContentChanges) > 0 {
		s.mu.Lock()
		s.docs[params.TextDocument.URI] = params.ContentChanges[len(params.ContentChanges)-1].Text
		s.mu.Unlock()
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	go s.reexpandAndPublish(params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

func (s *Server) handleExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ExecuteCommandParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	if params.Command != "autosv.expandFile" || len(params.Arguments) == 0 {
		return reply(ctx, nil, fmt.Errorf("unknown command: %s", params.Command))
	}
	var docURI string
	if err := json.Unmarshal(params.Arguments[0], &docURI); err != nil {
		return reply(ctx, nil, fmt.Errorf("invalid autosv.expandFile argument: %w", err))
	}
	s.reexpandAndPublish(protocol.DocumentURI(docURI))
	return reply(ctx, nil, nil)
}

// reexpandAndPublish re-runs the expansion pipeline over the document
// at docURI (reading disk content, since didSave is the trigger and the
// file is therefore current on disk) and republishes diagnostics.
func (s *Server) reexpandAndPublish(docURI protocol.DocumentURI) {
	path := docURI.Filename()

	src, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("lsp: failed to read %s: %v", path, err)
		return
	}

	f, err := svast.Parse(path, src)
	if err != nil {
		s.logger.Warn("lsp: failed to parse %s: %v", path, err)
		return
	}

	comp := compilation.FromFiles([]*svast.File{f})
	lenientCfg := *s.cfg.Config
	lenientCfg.Strictness = config.StrictnessLenient
	a := analyzer.New(&lenientCfg, s.logger)

	res, err := a.AnalyzeFile(f, comp)
	if err != nil {
		s.logger.Warn("lsp: analysis failed for %s: %v", path, err)
		return
	}

	if res.Changed {
		if err := os.WriteFile(path, res.Output, 0644); err != nil {
			s.logger.Warn("lsp: failed to write %s: %v", path, err)
		}
	}

	s.publishDiagnostics(docURI, res.Diagnostics.Diagnostics())
}

func (s *Server) publishDiagnostics(docURI protocol.DocumentURI, diags []diagnostics.Diagnostic) {
	s.mu.RLock()
	conn, ctx := s.conn, s.ctx
	s.mu.RUnlock()
	if conn == nil {
		return
	}

	lspDiags := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		sev := protocol.DiagnosticSeverityWarning
		if d.Severity == diagnostics.Error {
			sev = protocol.DiagnosticSeverityError
		}
		line := uint32(0)
		if d.Line > 0 {
			line = uint32(d.Line - 1)
		}
		col := uint32(0)
		if d.Column > 0 {
			col = uint32(d.Column - 1)
		}
		lspDiags = append(lspDiags, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: col},
				End:   protocol.Position{Line: line, Character: col},
			},
			Severity: sev,
			Source:   "autosv",
			Message:  fmt.Sprintf("[%s] %s", d.Category, d.Message),
		})
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: lspDiags,
	}); err != nil {
		s.logger.Warn("lsp: failed to publish diagnostics for %s: %v", docURI, err)
	}
}
