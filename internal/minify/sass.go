package minify

import (
	"context"
	"fmt"
	"sync"

	"github.com/bep/godartsass/v2"
)

// DartSass compiles stylesheets through the embedded Dart Sass protocol. One
// transpiler process is shared by all builds; Execute is safe for concurrent
// use.
type DartSass struct {
	transpiler *godartsass.Transpiler
	closeOnce  sync.Once
}

// NewDartSass starts the Dart Sass process. An empty binary means "sass" on
// PATH.
func NewDartSass(binary string) (*DartSass, error) {
	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: binary,
	})
	if err != nil {
		return nil, fmt.Errorf("starting dart sass: %w", err)
	}
	return &DartSass{transpiler: t}, nil
}

// Compile implements StylesheetCompiler.
func (d *DartSass) Compile(ctx context.Context, source string, syntax Syntax) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sourceSyntax := godartsass.SourceSyntaxSCSS
	if syntax == SyntaxSass {
		sourceSyntax = godartsass.SourceSyntaxSASS
	}

	res, err := d.transpiler.Execute(godartsass.Args{
		Source:       source,
		OutputStyle:  godartsass.OutputStyleCompressed,
		SourceSyntax: sourceSyntax,
	})
	if err != nil {
		return "", err
	}
	return res.CSS, nil
}

// Close stops the Dart Sass process.
func (d *DartSass) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = d.transpiler.Close()
	})
	return err
}
