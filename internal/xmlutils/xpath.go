// Package xmlutils provides XML helpers for the markup statement parser.
package xmlutils

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/xmlpath.v2"
)

// OFXPaths holds the compiled XPath expressions used to walk an OFX
// document after NormalizeOFX.
type OFXPaths struct {
	// Statement blocks, searched from the document root.
	BankStatements       *xmlpath.Path
	CreditCardStatements *xmlpath.Path

	// Relative to a statement block.
	Transactions *xmlpath.Path

	// Relative to a transaction node.
	Amount     *xmlpath.Path
	DatePosted *xmlpath.Path
	DateUser   *xmlpath.Path
	Memo       *xmlpath.Path
	Name       *xmlpath.Path
	FITID      *xmlpath.Path
}

// DefaultOFXPaths returns the expressions for bank and credit-card
// statement responses.
func DefaultOFXPaths() OFXPaths {
	return OFXPaths{
		BankStatements:       xmlpath.MustCompile("//STMTRS"),
		CreditCardStatements: xmlpath.MustCompile("//CCSTMTRS"),
		Transactions:         xmlpath.MustCompile("BANKTRANLIST/STMTTRN"),
		Amount:               xmlpath.MustCompile("TRNAMT"),
		DatePosted:           xmlpath.MustCompile("DTPOSTED"),
		DateUser:             xmlpath.MustCompile("DTUSER"),
		Memo:                 xmlpath.MustCompile("MEMO"),
		Name:                 xmlpath.MustCompile("NAME"),
		FITID:                xmlpath.MustCompile("FITID"),
	}
}

// Parse reads an XML document.
func Parse(r io.Reader) (*xmlpath.Node, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// ParseString reads an XML document held in memory.
func ParseString(doc string) (*xmlpath.Node, error) {
	return Parse(strings.NewReader(doc))
}

// Nodes returns every node matched by path under node, in document order.
func Nodes(node *xmlpath.Node, path *xmlpath.Path) []*xmlpath.Node {
	var nodes []*xmlpath.Node
	iter := path.Iter(node)
	for iter.Next() {
		nodes = append(nodes, iter.Node())
	}
	return nodes
}

// Text returns the trimmed text of the first match of path under node, or
// "" when there is no match.
func Text(node *xmlpath.Node, path *xmlpath.Path) string {
	value, ok := path.String(node)
	if !ok {
		return ""
	}
	return CleanText(value)
}

// FirstText returns the first non-empty Text among paths.
func FirstText(node *xmlpath.Node, paths ...*xmlpath.Path) string {
	for _, p := range paths {
		if v := Text(node, p); v != "" {
			return v
		}
	}
	return ""
}

// CleanText collapses runs of whitespace into single spaces and trims.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
