package lsp

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"golang.org/x/exp/slices"

	"github.com/junhg0211/lintre/pkg/ast"
	"github.com/junhg0211/lintre/pkg/diag"
	"github.com/junhg0211/lintre/pkg/eval"
	"github.com/junhg0211/lintre/pkg/parse"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	content map[lsp.DocumentURI]string
}

func newServer() *server {
	return &server{make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		// Required by the protocol.
		"initialized": noop,
		"shutdown":    noop,
		"exit":        exit,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func exit(_ context.Context, conn jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, conn.Close()
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			logger.Println("unknown method", req.Method)
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	a := analyze(params.TextDocument.URI, content)
	path := ast.PathAt(a.expr, lspPositionToIdx(content, params.Position))
	if len(path) == 0 {
		return lsp.Hover{}, nil
	}
	node := path[len(path)-1]
	text := ast.String(node)
	if v, ok := node.(*ast.Var); ok && !boundLocally(path, v.Name) {
		if value, bound := a.global.Index(v.Name); bound {
			text = v.Name + " = " + eval.Repr(value)
		}
	}
	rg := lspRangeFromRange(content, node)
	return lsp.Hover{
		Contents: []lsp.MarkedString{{Language: "lintre", Value: text}},
		Range:    &rg,
	}, nil
}

// Reports whether the last node of path sees name bound by a lambda parameter
// or by a define of a nested sequence. Defines of the root sequence are global.
func boundLocally(path []ast.Expr, name string) bool {
	for i := 0; i < len(path)-1; i++ {
		switch parent := path[i].(type) {
		case *ast.Lambda:
			if slices.Contains(parent.Params, name) {
				return true
			}
		case *ast.Sequence:
			if i == 0 {
				continue
			}
			for _, e := range parent.Exprs {
				if e == path[i+1] {
					break
				}
				if def, ok := e.(*ast.Define); ok && def.Name == name {
					return true
				}
			}
		}
	}
	return false
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	a := analyze(params.TextDocument.URI, content)
	dot := lspPositionToIdx(content, params.Position)
	begin := wordBefore(content, dot)
	seed := content[begin:dot]
	lspRange := lspRangeFromRange(content, diag.Ranging{From: begin, To: dot})

	names := lo.Filter(definedNames(a.expr), func(name string, _ int) bool {
		return strings.HasPrefix(name, seed)
	})
	return lo.Map(names, func(name string, _ int) lsp.CompletionItem {
		item := lsp.CompletionItem{
			Label: name,
			Kind:  lsp.CIKVariable,
			TextEdit: &lsp.TextEdit{
				Range:   lspRange,
				NewText: name,
			},
		}
		if v, ok := a.global.Index(name); ok {
			item.Kind = lsp.CIKFunction
			item.Detail = eval.Repr(v)
		}
		return item
	}), nil
}

// Result of analyzing a document.
type analysis struct {
	expr     ast.Expr
	parseErr error
	evalErr  error
	global   eval.Env
}

// Parses and, if there are no parse errors, evaluates a document with a new
// Evaler.
func analyze(uri lsp.DocumentURI, content string) analysis {
	src := parse.Source{Name: string(uri), Code: content}
	e, err := parse.Parse(src)
	if err != nil {
		return analysis{expr: e, parseErr: err}
	}
	ev := eval.NewEvaler()
	_, err = ev.Eval(src, eval.EvalCfg{})
	return analysis{expr: e, evalErr: err, global: ev.Global}
}

// Returns the names defined anywhere in the expression, sorted.
func definedNames(e ast.Expr) []string {
	var names []string
	var walk func(e ast.Expr)
	walk = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.Lambda:
			walk(e.Body)
		case *ast.Apply:
			walk(e.Fn)
			walk(e.Arg)
		case *ast.Define:
			names = append(names, e.Name)
			walk(e.Value)
		case *ast.Sequence:
			for _, e := range e.Exprs {
				walk(e)
			}
		}
	}
	walk(e)
	slices.Sort(names)
	return slices.Compact(names)
}

// Returns the start of the word that ends at dot.
func wordBefore(s string, dot int) int {
	begin := dot
	for begin > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:begin])
		if !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			break
		}
		begin -= size
	}
	return begin
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics(uri, content)})
}

func diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	a := analyze(uri, content)
	if a.parseErr != nil {
		entries := parse.UnpackErrors(a.parseErr)
		diags := make([]lsp.Diagnostic, len(entries))
		for i, err := range entries {
			diags[i] = lsp.Diagnostic{
				Range:    lspRangeFromRange(content, err),
				Severity: lsp.Error,
				Source:   "parse",
				Message:  err.Message,
			}
		}
		return diags
	}
	if a.evalErr != nil {
		var r diag.Ranger = diag.Ranging{}
		if exc, ok := a.evalErr.(*eval.Exception); ok && exc.StackTrace != nil {
			r = exc.StackTrace.Head
		}
		return []lsp.Diagnostic{{
			Range:    lspRangeFromRange(content, r),
			Severity: lsp.Error,
			Source:   "eval",
			Message:  eval.Reason(a.evalErr).Error(),
		}}
	}
	return []lsp.Diagnostic{}
}
