package solution

import (
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readText reads a solution or manifest file as UTF-8. A UTF-8 or UTF-16
// byte order mark is honoured and stripped; files without one are read as
// UTF-8.
func readText(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- paths come from the solution being loaded
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return decodeText(f)
}

func decodeText(r io.Reader) ([]byte, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return io.ReadAll(transform.NewReader(r, dec))
}
