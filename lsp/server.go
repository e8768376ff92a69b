// Package lsp serves parse diagnostics for open Java documents over the
// Language Server Protocol.
package lsp

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/docfront/java/diag"
	"github.com/dhamidi/docfront/java/parser"
)

const lsName = "docfront"

var log = commonlog.GetLogger("docfront.lsp")

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string
	opts    []parser.Option
	diag    *diag.Collector
}

// NewServer returns a server that parses documents with opts.
func NewServer(version string, opts ...parser.Option) *Server {
	ls := &Server{
		version: version,
		opts:    opts,
		diag:    diag.NewCollector(),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("client initialized")
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.check(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.check(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.check(ctx, params.TextDocument.URI, *params.Text)
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	ls.diag.Clear(path)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// check parses text as the document at uri and publishes its diagnostics.
func (ls *Server) check(ctx *glsp.Context, uri, text string) {
	path, err := uriToPath(uri)
	if err != nil {
		log.Warningf("ignoring %s: %s", uri, err)
		return
	}

	src := parser.NewSourceString(path, text)
	res := parser.Parse(context.Background(), src, ls.opts...)
	ls.diag.Report(src, res.Diagnostics)
	if res.Err != nil {
		log.Warningf("%s: %s", path, res.Err)
	}
	log.Debugf("%s: %d diagnostics", path, len(res.Diagnostics))

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(src, ls.diag.File(path)),
	})
}

// Diagnostics returns the diagnostics last published for the document at
// path.
func (ls *Server) Diagnostics(path string) []parser.Diagnostic {
	return ls.diag.File(path)
}

func toProtocolDiagnostics(src *parser.Source, diags []parser.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	source := lsName
	for _, d := range diags {
		end := d.End
		if end.Offset < d.Pos.Offset {
			end = d.Pos
		}
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: toProtocolPosition(src, d.Pos),
				End:   toProtocolPosition(src, end),
			},
			Severity: severityPtr(protocol.DiagnosticSeverityError),
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

// toProtocolPosition converts a byte column into the zero-based UTF-16
// position LSP clients expect.
func toProtocolPosition(src *parser.Source, pos parser.Position) protocol.Position {
	line := src.Line(pos.Line)
	prefix := pos.Column - 1
	if prefix > len(line) {
		prefix = len(line)
	}
	if prefix < 0 {
		prefix = 0
	}

	units := 0
	for s := line[:prefix]; s != ""; {
		r, size := utf8.DecodeRuneInString(s)
		if n := utf16.RuneLen(r); n > 0 {
			units += n
		} else {
			units++
		}
		s = s[size:]
	}

	lineIdx := pos.Line - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	return protocol.Position{
		Line:      protocol.UInteger(lineIdx),
		Character: protocol.UInteger(units),
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

func severityPtr(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}
