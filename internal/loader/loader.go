// Package loader finds and reads source modules on a filesystem.
package loader

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tliron/commonlog"

	"sigil/internal/ast"
	cerrors "sigil/internal/errors"
	"sigil/internal/parser"
)

var log = commonlog.GetLogger("sigil.loader")

// Extension is the suffix of every source file.
const Extension = ".sg"

// ErrNotFound is the cause of a failed Resolve.
var ErrNotFound = errors.New("module not found")

// Loader resolves dotted module names against ordered search paths.
// Sources are cached by resolved path and shared by loaders made with
// WithPaths.
type Loader struct {
	fs    afero.Fs
	paths []string
	cache *cache
}

type cache struct {
	mu      sync.Mutex
	sources map[string]string
}

func New(fs afero.Fs, searchPaths []string) *Loader {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}
	return &Loader{
		fs:    fs,
		paths: searchPaths,
		cache: &cache{sources: make(map[string]string)},
	}
}

// WithPaths returns a loader that searches extra first and shares this
// loader's cache.
func (l *Loader) WithPaths(extra ...string) *Loader {
	paths := append(append([]string(nil), extra...), l.paths...)
	return &Loader{fs: l.fs, paths: paths, cache: l.cache}
}

func (l *Loader) SearchPaths() []string {
	return append([]string(nil), l.paths...)
}

// ModulePath turns "a.b" into "a/b.sg".
func ModulePath(name string) string {
	return filepath.Join(strings.Split(name, ".")...) + Extension
}

// Resolve returns the first search path candidate for name that exists.
func (l *Loader) Resolve(name string) (string, error) {
	rel := ModulePath(name)
	for _, dir := range l.paths {
		candidate := filepath.Join(dir, rel)
		info, err := l.fs.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "stat %s", candidate)
		}
	}
	return "", errors.Wrapf(ErrNotFound, "%s (searched %s)", rel, strings.Join(l.paths, ", "))
}

// ReadFile returns the contents of path, from the cache when possible.
func (l *Loader) ReadFile(path string) (string, error) {
	l.cache.mu.Lock()
	defer l.cache.mu.Unlock()

	if source, ok := l.cache.sources[path]; ok {
		return source, nil
	}
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	log.Debugf("read %s (%d bytes)", path, len(data))
	l.cache.sources[path] = string(data)
	return string(data), nil
}

// Invalidate drops path from the cache.
func (l *Loader) Invalidate(path string) {
	l.cache.mu.Lock()
	defer l.cache.mu.Unlock()
	delete(l.cache.sources, path)
}

// Import resolves, reads and parses the module called name.
func (l *Loader) Import(name string) (*ast.Module, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	source, err := l.ReadFile(path)
	if err != nil {
		return nil, err
	}
	module, err := Parse(path, source)
	if err != nil {
		return nil, err
	}
	module.Name = name
	return module, nil
}

// Parse parses source and reports the first scan or parse error as a
// compiler error.
func Parse(path, source string) (*ast.Module, error) {
	module, parseErrs, scanErrs := parser.ParseSource(path, source)
	if len(scanErrs) > 0 {
		e := scanErrs[0]
		return nil, syntaxError(cerrors.ErrorLexical, path, e.Message, e.Position, e.Length)
	}
	if len(parseErrs) > 0 {
		e := parseErrs[0]
		return nil, syntaxError(cerrors.ErrorSyntax, path, e.Message, e.Position, e.Length)
	}
	return module, nil
}

func syntaxError(code, path, message string, pos parser.Position, length int) error {
	at := ast.Position{Filename: path, Offset: pos.Offset, Line: pos.Line, Column: pos.Column}
	if length < 1 {
		length = 1
	}
	return cerrors.NewSemanticError(code, message, at).WithLength(length).Build()
}
