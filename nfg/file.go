package nfg

import (
	"io"
	"os"
	"strings"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"

	"github.com/timpalpant/nash"
)

// ReadFile reads a game from the named file, decompressing it first if the
// name ends in .gz.
func ReadFile(filename string) (*nash.Game, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(filename, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "decompressing %s", filename)
		}
		defer gz.Close()
		r = gz
	}

	g, err := Read(r)
	return g, errors.Wrap(err, filename)
}

// WriteFile writes g to the named file, compressing it if the name ends
// in .gz.
func WriteFile(filename string, g *nash.Game) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(filename, ".gz") {
		if err := Write(f, g); err != nil {
			return err
		}
		return f.Close()
	}

	gz := gzip.NewWriter(f)
	if err := Write(gz, g); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return f.Close()
}
