// Package detector classifies uploaded statements before parsing.
package detector

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the serialization family of a statement.
type Format int

const (
	Unsupported Format = iota
	Markup
	Delimited
)

func (f Format) String() string {
	switch f {
	case Markup:
		return "markup"
	case Delimited:
		return "delimited"
	default:
		return "unsupported"
	}
}

// ParseFormat reads a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markup", "ofx", "qfx":
		return Markup, nil
	case "delimited", "csv":
		return Delimited, nil
	default:
		return Unsupported, fmt.Errorf("unknown format %q", s)
	}
}

var extensions = map[string]Format{
	".ofx": Markup,
	".qfx": Markup,
	".csv": Delimited,
}

// HasStatementExtension reports whether name carries an OFX, QFX or CSV
// extension.
func HasStatementExtension(name string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Markup root tokens as emitted by banks. Matching is case-sensitive.
var markupTokens = [][]byte{[]byte("<OFX>"), []byte("<?OFX")}

// Detect classifies a statement by file extension, then by content. The
// first rule that matches wins.
func Detect(fileName string, content []byte) Format {
	if f, ok := extensions[strings.ToLower(filepath.Ext(fileName))]; ok {
		return f
	}
	for _, token := range markupTokens {
		if bytes.Contains(content, token) {
			return Markup
		}
	}
	if bytes.IndexByte(content, ',') >= 0 && bytes.IndexByte(content, '\n') >= 0 {
		return Delimited
	}
	return Unsupported
}
