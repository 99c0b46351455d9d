// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"sigil/internal/compiler"
	"sigil/internal/config"
	"sigil/internal/lsp"
)

const lsName = "sigil"

var handler protocol.Handler

func main() {
	configFile := flag.String("config", "", "configuration file (default sigil.toml when present)")
	flag.Parse()

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, viper.New(), *configFile)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	verbosity, err := cfg.Verbosity()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	commonlog.Configure(verbosity, cfg.LogPath())
	log := commonlog.GetLogger("sigil.lsp")

	settings, err := cfg.Settings()
	if err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}

	sigilHandler := lsp.NewSigilHandler(compiler.New(fs, settings))

	handler = protocol.Handler{
		Initialize:                     sigilHandler.Initialize,
		Initialized:                    sigilHandler.Initialized,
		Shutdown:                       sigilHandler.Shutdown,
		SetTrace:                       sigilHandler.SetTrace,
		TextDocumentDidOpen:            sigilHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           sigilHandler.TextDocumentDidClose,
		TextDocumentDidChange:          sigilHandler.TextDocumentDidChange,
		TextDocumentCompletion:         sigilHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: sigilHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Info("starting sigil language server")

	// stdio is what most editors speak
	if err := s.RunStdio(); err != nil {
		log.Errorf("language server stopped: %s", err)
		os.Exit(1)
	}
}
