package lsp_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"sigil/internal/compiler"
	"sigil/internal/lsp"
)

const ownerSource = `owner: public(address);
LIMIT: constant(uint256) = 10;

@external
fn set(who: address) {
    self.owner = who;
}
`

type recorder struct {
	published []*protocol.PublishDiagnosticsParams
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				r.published = append(r.published, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
}

func (r *recorder) last(t *testing.T) []protocol.Diagnostic {
	t.Helper()
	require.NotEmpty(t, r.published, "no diagnostics published")
	return r.published[len(r.published)-1].Diagnostics
}

func newHandler(t *testing.T, files map[string]string) *lsp.SigilHandler {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, text := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(text), 0o644))
	}
	return lsp.NewSigilHandler(compiler.New(fs, compiler.DefaultSettings()))
}

func open(t *testing.T, h *lsp.SigilHandler, ctx *glsp.Context, uri, text string) {
	t.Helper()
	err := h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "sigil", Version: 1, Text: text},
	})
	require.NoError(t, err)
}

func TestTextDocumentSemanticTokensFull(t *testing.T) {
	handler := newHandler(t, map[string]string{"/work/owner.sg": ownerSource})
	rec := &recorder{}

	tokens, err := handler.TextDocumentSemanticTokensFull(rec.context(), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///work/owner.sg"},
	})
	require.NoError(t, err, "TextDocumentSemanticTokensFull returned error")
	require.NotNil(t, tokens)

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err, "Failed to decode semantic tokens")
	require.Len(t, decoded, 12)

	assertToken(t, &decoded[0], 1, 1, 5, "property", []string{"declaration"})
	assertToken(t, &decoded[1], 1, 15, 7, "type", nil)
	assertToken(t, &decoded[2], 2, 1, 5, "variable", []string{"declaration", "readonly"})
	assertToken(t, &decoded[3], 2, 17, 7, "type", nil)
	assertToken(t, &decoded[4], 2, 28, 2, "number", nil)
	assertToken(t, &decoded[5], 4, 1, 9, "modifier", nil)
	assertToken(t, &decoded[6], 5, 4, 3, "function", []string{"declaration"})
	assertToken(t, &decoded[7], 5, 8, 3, "parameter", []string{"declaration"})
	assertToken(t, &decoded[8], 5, 13, 7, "type", nil)
	assertToken(t, &decoded[9], 6, 5, 4, "keyword", nil)
	assertToken(t, &decoded[10], 6, 10, 5, "property", nil)
	assertToken(t, &decoded[11], 6, 18, 3, "variable", nil)

	// reading from disk publishes the document's diagnostics once
	assert.Empty(t, rec.last(t))
}

func TestSemanticTokensEnvironment(t *testing.T) {
	source := `total: uint256;

@external
fn f() {
    self.total = max(block.number, 1);
}
`
	handler := newHandler(t, nil)
	rec := &recorder{}
	open(t, handler, rec.context(), "file:///work/env.sg", source)

	tokens, err := handler.TextDocumentSemanticTokensFull(rec.context(), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///work/env.sg"},
	})
	require.NoError(t, err)
	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err)

	var line5 []DecodedToken
	for _, tok := range decoded {
		if tok.Line == 5 {
			line5 = append(line5, tok)
		}
	}
	require.Len(t, line5, 6)
	assertToken(t, &line5[0], 5, 5, 4, "keyword", nil)
	assertToken(t, &line5[1], 5, 10, 5, "property", nil)
	assertToken(t, &line5[2], 5, 18, 3, "function", nil)
	assertToken(t, &line5[3], 5, 22, 5, "namespace", nil)
	assertToken(t, &line5[4], 5, 28, 6, "variable", nil)
	assertToken(t, &line5[5], 5, 36, 1, "number", nil)
}

func TestDiagnostics(t *testing.T) {
	handler := newHandler(t, map[string]string{
		"/work/lib.sg": "fn broken( {\n",
	})
	rec := &recorder{}
	ctx := rec.context()
	uri := "file:///work/main.sg"

	open(t, handler, ctx, uri, ownerSource)
	assert.Empty(t, rec.last(t))
	assert.Equal(t, uri, rec.published[0].URI)

	t.Run("syntax", func(t *testing.T) {
		open(t, handler, ctx, uri, "owner: address\n")
		diags := rec.last(t)
		require.NotEmpty(t, diags)
		assert.Equal(t, "sigil-parser", *diags[0].Source)
		assert.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
	})

	t.Run("missing module", func(t *testing.T) {
		open(t, handler, ctx, uri, "import missing;\n")
		diags := rec.last(t)
		require.Len(t, diags, 1)
		require.NotNil(t, diags[0].Code)
		assert.Equal(t, "E0400", diags[0].Code.Value)
		assert.Equal(t, protocol.Position{Line: 0, Character: 0}, diags[0].Range.Start)
		assert.Equal(t, "sigil", *diags[0].Source)
	})

	t.Run("error inside import", func(t *testing.T) {
		open(t, handler, ctx, uri, "import lib;\n")
		diags := rec.last(t)
		require.Len(t, diags, 1)
		assert.True(t, strings.HasPrefix(diags[0].Message, "/work/lib.sg: "), diags[0].Message)
		assert.Equal(t, "E0001", diags[0].Code.Value)
	})

	t.Run("change", func(t *testing.T) {
		err := handler.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
				Version:                2,
			},
			ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: ownerSource}},
		})
		require.NoError(t, err)
		assert.Empty(t, rec.last(t))

		text, ok := handler.Content("/work/main.sg")
		require.True(t, ok)
		assert.Equal(t, ownerSource, text)
	})

	t.Run("close", func(t *testing.T) {
		err := handler.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		})
		require.NoError(t, err)
		_, ok := handler.Content("/work/main.sg")
		assert.False(t, ok)
	})
}

func TestCloseRereadsImports(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/lib.sg", []byte("fn broken( {\n"), 0o644))
	handler := lsp.NewSigilHandler(compiler.New(fs, compiler.DefaultSettings()))
	rec := &recorder{}
	ctx := rec.context()
	uri := "file:///work/main.sg"

	open(t, handler, ctx, uri, "import lib;\n")
	require.Len(t, rec.last(t), 1)

	require.NoError(t, afero.WriteFile(fs, "/work/lib.sg", []byte("FEE: constant(uint256) = 1;\n"), 0o644))
	open(t, handler, ctx, uri, "import lib;\n")
	require.Len(t, rec.last(t), 1, "the cached source is used until the file is closed")

	err := handler.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///work/lib.sg"},
	})
	require.NoError(t, err)
	open(t, handler, ctx, uri, "import lib;\n")
	assert.Empty(t, rec.last(t))
}

func TestSyntaxErrorKeepsLastTokens(t *testing.T) {
	handler := newHandler(t, nil)
	rec := &recorder{}
	ctx := rec.context()
	uri := "file:///work/owner.sg"

	open(t, handler, ctx, uri, ownerSource)
	open(t, handler, ctx, uri, "owner: public(address)\n")

	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err)
	assert.Len(t, decoded, 12)
}

func TestCompletion(t *testing.T) {
	handler := newHandler(t, nil)
	rec := &recorder{}
	uri := "file:///work/owner.sg"
	open(t, handler, rec.context(), uri, ownerSource)

	result, err := handler.TextDocumentCompletion(rec.context(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		},
	})
	require.NoError(t, err)
	list, ok := result.(*protocol.CompletionList)
	require.True(t, ok)

	labels := map[string]protocol.CompletionItemKind{}
	for _, item := range list.Items {
		labels[item.Label] = *item.Kind
	}
	assert.Equal(t, protocol.CompletionItemKindKeyword, labels["fn"])
	assert.Equal(t, protocol.CompletionItemKindKeyword, labels["@nonreentrant"])
	assert.Equal(t, protocol.CompletionItemKindModule, labels["msg"])
	assert.Equal(t, protocol.CompletionItemKindFunction, labels["range"])
	assert.Equal(t, protocol.CompletionItemKindField, labels["owner"])
	assert.Equal(t, protocol.CompletionItemKindFunction, labels["set"])
}

func TestInitialize(t *testing.T) {
	handler := newHandler(t, nil)
	result, err := handler.Initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	init, ok := result.(*protocol.InitializeResult)
	require.True(t, ok)
	legend := init.Capabilities.SemanticTokensProvider.(*protocol.SemanticTokensOptions).Legend
	assert.Equal(t, lsp.SemanticTokenTypes, legend.TokenTypes)
}

type DecodedToken struct {
	Index     int
	Line      uint32
	Char      uint32
	Length    uint32
	Type      string
	Modifiers []string
}

func decodeSemanticTokens(raw []uint32) ([]DecodedToken, error) {
	if len(raw)%5 != 0 {
		return nil, fmt.Errorf("raw token data length %d is not a multiple of 5", len(raw))
	}

	var (
		decoded []DecodedToken
		line    uint32
		char    uint32
	)

	for i := 0; i < len(raw); i += 5 {
		deltaLine := raw[i]
		deltaStart := raw[i+1]
		length := raw[i+2]
		tokenTypeIdx := raw[i+3]
		tokenModMask := raw[i+4]

		if deltaLine == 0 {
			char += deltaStart
		} else {
			line += deltaLine
			char = deltaStart
		}

		var modifiers []string
		for j, name := range lsp.SemanticTokenModifiers {
			if tokenModMask&(1<<j) != 0 {
				modifiers = append(modifiers, name)
			}
		}

		decoded = append(decoded, DecodedToken{
			Index:     i / 5,
			Line:      line + 1,
			Char:      char + 1,
			Length:    length,
			Type:      lsp.SemanticTokenTypes[tokenTypeIdx],
			Modifiers: modifiers,
		})
	}

	return decoded, nil
}

func assertToken(t *testing.T, token *DecodedToken, expectedLine, expectedChar, expectedLength uint32, expectedType string, expectedModifiers []string) {
	t.Helper()
	require.Equal(t, expectedLine, token.Line, "line mismatch (expected line %d)", expectedLine)
	require.Equal(t, expectedChar, token.Char, "char mismatch (expected char %d)", expectedChar)
	require.Equal(t, expectedLength, token.Length, "length mismatch")
	require.Equal(t, expectedType, token.Type, "type mismatch")
	require.ElementsMatch(t, expectedModifiers, token.Modifiers, "modifiers mismatch")
}
