// Package lsp serves diagnostics, completion and semantic tokens for sigil
// sources over the language server protocol.
package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"sigil/internal/ast"
	"sigil/internal/compiler"
	"sigil/internal/function"
	"sigil/internal/parser"
	"sigil/internal/semantic"
	"sigil/internal/stdlib"
)

var log = commonlog.GetLogger("sigil.lsp")

// SemanticTokenTypes is the token type legend advertised to clients.
var SemanticTokenTypes = []string{
	"namespace",
	"type",
	"typeParameter",
	"function",
	"variable",
	"parameter",
	"property",
	"keyword",
	"number",
	"operator",
	"modifier",
}

// SemanticTokenModifiers is the token modifier legend advertised to clients.
var SemanticTokenModifiers = []string{
	"declaration",
	"definition",
	"readonly",
	"static",
	"deprecated",
	"abstract",
}

// SigilHandler implements the LSP server handlers for sigil sources.
type SigilHandler struct {
	compiler *compiler.Compiler

	mu      sync.RWMutex
	content map[string]string
	asts    map[string]*ast.Module
}

func NewSigilHandler(c *compiler.Compiler) *SigilHandler {
	return &SigilHandler{
		compiler: c,
		content:  make(map[string]string),
		asts:     make(map[string]*ast.Module),
	}
}

// Initialize advertises the server's capabilities.
func (h *SigilHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

func (h *SigilHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

func (h *SigilHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (h *SigilHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen checks the opened document and publishes diagnostics.
func (h *SigilHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Infof("opened %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	sendDiagnosticNotification(ctx, params.TextDocument.URI, h.update(path, params.TextDocument.Text))
	return nil
}

func (h *SigilHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Infof("closed %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	delete(h.asts, path)
	// importers read the file from disk again once the editor lets go of it
	h.compiler.Loader().Invalidate(path)
	return nil
}

// TextDocumentDidChange rechecks the document. Only full synchronization
// is advertised, so the last change carries the whole text.
func (h *SigilHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	var text string
	var found bool
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text, found = c.Text, true
		case protocol.TextDocumentContentChangeEvent:
			text, found = c.Text, true
		}
	}
	if !found {
		text, err = h.compiler.Loader().ReadFile(path)
		if err != nil {
			return err
		}
	}

	sendDiagnosticNotification(ctx, params.TextDocument.URI, h.update(path, text))
	return nil
}

// TextDocumentCompletion offers keywords, decorators, environment names and
// the state variables and functions of the document.
func (h *SigilHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	items := staticCompletions()

	path, err := uriToPath(params.TextDocument.URI)
	if err == nil {
		h.mu.RLock()
		module := h.asts[path]
		h.mu.RUnlock()
		items = append(items, moduleCompletions(module)...)
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// TextDocumentSemanticTokensFull returns semantic tokens for the whole
// document, reading it from disk when it was never opened.
func (h *SigilHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	log.Debugf("semantic tokens for %s", params.TextDocument.URI)

	rawURI := params.TextDocument.URI
	path, err := uriToPath(rawURI)
	if err != nil {
		return nil, err
	}

	module, err := h.getOrUpdateAST(ctx, path, rawURI)
	if err != nil {
		return nil, err
	}

	return &protocol.SemanticTokens{
		Data: encodeSemanticTokens(collectSemanticTokens(module)),
	}, nil
}

func (h *SigilHandler) getOrUpdateAST(ctx *glsp.Context, path string, rawURI protocol.DocumentUri) (*ast.Module, error) {
	h.mu.RLock()
	module, ok := h.asts[path]
	h.mu.RUnlock()
	if ok {
		return module, nil
	}

	source, err := h.compiler.Loader().ReadFile(path)
	if err != nil {
		return nil, err
	}
	sendDiagnosticNotification(ctx, rawURI, h.update(path, source))

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.asts[path], nil
}

// update parses and analyzes source. The last AST that parsed cleanly is
// kept for tokens and completion while the document has syntax errors.
func (h *SigilHandler) update(path, source string) []protocol.Diagnostic {
	module, parseErrs, scanErrs := parser.ParseSource(path, source)

	h.mu.Lock()
	h.content[path] = source
	h.mu.Unlock()

	if len(scanErrs) > 0 || len(parseErrs) > 0 {
		return append(ConvertScanErrors(scanErrs), ConvertParseErrors(parseErrs)...)
	}
	module.Path = path
	module.Source = source

	h.mu.Lock()
	h.asts[path] = module
	h.mu.Unlock()

	importer := h.compiler.Loader().WithPaths(filepath.Dir(path))
	if _, err := semantic.NewAnalyzer(importer).Analyze(module); err != nil {
		return []protocol.Diagnostic{ConvertError(path, err)}
	}
	return []protocol.Diagnostic{}
}

// Content returns the last text seen for path.
func (h *SigilHandler) Content(path string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	text, ok := h.content[path]
	return text, ok
}

func staticCompletions() []protocol.CompletionItem {
	var items []protocol.CompletionItem
	keywords := make([]string, 0, len(parser.KEYWORDS))
	for k := range parser.KEYWORDS {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	for _, k := range keywords {
		items = append(items, completion(k, protocol.CompletionItemKindKeyword, "keyword"))
	}
	for _, d := range function.DecoratorNames() {
		items = append(items, completion("@"+d, protocol.CompletionItemKindKeyword, "decorator"))
	}
	for _, name := range stdlib.ReservedNames() {
		switch {
		case stdlib.IsKnownModule(name):
			items = append(items, completion(name, protocol.CompletionItemKindModule, "environment"))
		case stdlib.GetBuiltin(name) != nil:
			items = append(items, completion(name, protocol.CompletionItemKindFunction, "builtin"))
		default:
			items = append(items, completion(name, protocol.CompletionItemKindVariable, "contract"))
		}
	}
	return items
}

func moduleCompletions(module *ast.Module) []protocol.CompletionItem {
	if module == nil {
		return nil
	}
	var items []protocol.CompletionItem
	for _, item := range module.Items {
		switch v := item.(type) {
		case *ast.VariableDecl:
			items = append(items, completion(v.Name.Value, protocol.CompletionItemKindField, "state"))
		case *ast.FunctionDef:
			items = append(items, completion(v.Name.Value, protocol.CompletionItemKindFunction, "function"))
		case *ast.InterfaceDef:
			items = append(items, completion(v.Name.Value, protocol.CompletionItemKindInterface, "interface"))
		case *ast.Import:
			items = append(items, completion(v.LocalName(), protocol.CompletionItemKindModule, "import"))
		}
	}
	return items
}

func completion(label string, kind protocol.CompletionItemKind, detail string) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:  label,
		Kind:   &kind,
		Detail: ptrString(detail),
	}
}

// uriToPath converts a file URI to a platform-local path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// "/C:/..." becomes "C:/..." on Windows
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	log.Debugf("publishing %d diagnostics for %s", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
