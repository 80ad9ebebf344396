package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/junhg0211/lintre/pkg/testutil"
	"github.com/junhg0211/lintre/pkg/tt"
)

type clientFixture struct {
	ctx   context.Context
	conn  *jsonrpc2.Conn
	diags chan lsp.PublishDiagnosticsParams
}

func setup(t *testing.T) *clientFixture {
	serverSide, clientSide := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}),
		handler(newServer()))

	diags := make(chan lsp.PublishDiagnosticsParams, 10)
	client := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
				var params lsp.PublishDiagnosticsParams
				if json.Unmarshal(*req.Params, &params) == nil {
					diags <- params
				}
			}
			return nil, nil
		}))
	t.Cleanup(func() { client.Close() })
	return &clientFixture{ctx, client, diags}
}

func (f *clientFixture) call(t *testing.T, method string, params, result any) {
	t.Helper()
	if err := f.conn.Call(f.ctx, method, params, result); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func (f *clientFixture) open(t *testing.T, uri lsp.DocumentURI, text string) []lsp.Diagnostic {
	t.Helper()
	err := f.conn.Notify(f.ctx, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, Text: text}})
	if err != nil {
		t.Fatal(err)
	}
	return f.waitDiags(t, uri)
}

func (f *clientFixture) waitDiags(t *testing.T, uri lsp.DocumentURI) []lsp.Diagnostic {
	t.Helper()
	select {
	case params := <-f.diags:
		if params.URI != uri {
			t.Fatalf("got diagnostics for %s, want %s", params.URI, uri)
		}
		return params.Diagnostics
	case <-time.After(testutil.Scaled(5 * time.Second)):
		t.Fatalf("timed out waiting for diagnostics")
		return nil
	}
}

func rng(line1, char1, line2, char2 int) lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: line1, Character: char1},
		End:   lsp.Position{Line: line2, Character: char2}}
}

func TestInitialize(t *testing.T) {
	f := setup(t)
	var result lsp.InitializeResult
	f.call(t, "initialize", lsp.InitializeParams{}, &result)
	if !result.Capabilities.HoverProvider || result.Capabilities.CompletionProvider == nil {
		t.Errorf("capabilities %+v, want hover and completion", result.Capabilities)
	}
}

func TestUnknownMethod(t *testing.T) {
	f := setup(t)
	err := f.conn.Call(f.ctx, "textDocument/rename", struct{}{}, nil)
	if rpcErr, ok := err.(*jsonrpc2.Error); !ok || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("got error %v, want method not found", err)
	}
}

func TestDiagnostics(t *testing.T) {
	f := setup(t)
	const uri = "file:///a.lc"

	diags := f.open(t, uri, "f = L x. x;\nf g")
	want := []lsp.Diagnostic{{
		Range: rng(1, 2, 1, 3), Severity: lsp.Error,
		Source: "eval", Message: "unbound variable: g"}}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Errorf("eval error diagnostics (-want +got):\n%s", diff)
	}

	err := f.conn.Notify(f.ctx, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "(x"}}})
	if err != nil {
		t.Fatal(err)
	}
	diags = f.waitDiags(t, uri)
	want = []lsp.Diagnostic{{
		Range: rng(0, 2, 0, 2), Severity: lsp.Error,
		Source: "parse", Message: "should be ')'"}}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Errorf("parse error diagnostics (-want +got):\n%s", diff)
	}

	if diags := f.open(t, "file:///b.lc", "L x. x"); len(diags) != 0 {
		t.Errorf("got diagnostics %v for valid code", diags)
	}
}

func TestHover(t *testing.T) {
	f := setup(t)
	const uri = "file:///a.lc"
	f.open(t, uri, "id = L x. x; id id")

	hover := func(char int) lsp.Hover {
		var result lsp.Hover
		f.call(t, "textDocument/hover", lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     lsp.Position{Line: 0, Character: char}}, &result)
		return result
	}

	h := hover(13)
	if len(h.Contents) != 1 || h.Contents[0].Value != "id = L x. x" {
		t.Errorf("hover on global variable shows %v", h.Contents)
	}
	if h.Range == nil || *h.Range != rng(0, 13, 0, 15) {
		t.Errorf("hover on global variable has range %v", h.Range)
	}

	h = hover(10)
	if len(h.Contents) != 1 || h.Contents[0].Value != "x" {
		t.Errorf("hover on parameter shows %v", h.Contents)
	}
}

func TestHover_LocalNamesShadowGlobals(t *testing.T) {
	f := setup(t)
	hover := func(uri lsp.DocumentURI, char int) string {
		var result lsp.Hover
		f.call(t, "textDocument/hover", lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     lsp.Position{Line: 0, Character: char}}, &result)
		if len(result.Contents) != 1 {
			return fmt.Sprint(result.Contents)
		}
		return result.Contents[0].Value
	}

	f.open(t, "file:///a.lc", "x = L a. a; f = L x. x; f x")
	tt.Test(t, tt.Fn(func(char int) string { return hover("file:///a.lc", char) }).Named("hover"),
		tt.It("shows a parameter as is").Args(21).Rets("x"),
		tt.It("shows the global binding outside the lambda").Args(26).Rets("x = L a. a"),
	)

	f.open(t, "file:///b.lc", "x = L a. a; r = (x = L b. b; x)")
	tt.Test(t, tt.Fn(func(char int) string { return hover("file:///b.lc", char) }).Named("hover"),
		tt.It("shows a name defined in a nested sequence as is").Args(29).Rets("x"),
	)
}

func TestCompletion(t *testing.T) {
	f := setup(t)
	const uri = "file:///a.lc"
	const code = "id = L x. x; idle = L y. y; k = L a b. a; i"
	f.open(t, uri, code)

	var items []lsp.CompletionItem
	f.call(t, "textDocument/completion", lsp.CompletionParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     lsp.Position{Line: 0, Character: len(code)}}}, &items)

	replace := rng(0, len(code)-1, 0, len(code))
	want := []lsp.CompletionItem{
		{Label: "id", Kind: lsp.CIKFunction, Detail: "L x. x",
			TextEdit: &lsp.TextEdit{Range: replace, NewText: "id"}},
		{Label: "idle", Kind: lsp.CIKFunction, Detail: "L y. y",
			TextEdit: &lsp.TextEdit{Range: replace, NewText: "idle"}},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("completion items (-want +got):\n%s", diff)
	}
}
