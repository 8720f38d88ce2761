package ofxparser

import (
	"fmt"

	"fjacquet/statement-import/internal/xmlutils"
)

type xpathStrategy struct {
	paths xmlutils.OFXPaths
}

func newXPathStrategy() xpathStrategy {
	return xpathStrategy{paths: xmlutils.DefaultOFXPaths()}
}

func (xpathStrategy) Name() string { return StrategyXPath }

// Extract walks every STMTRS and CCSTMTRS block, so single and repeated
// statement responses are handled alike.
func (s xpathStrategy) Extract(content []byte) ([]node, error) {
	doc, err := xmlutils.NormalizeOFX(content)
	if err != nil {
		return nil, err
	}
	root, err := xmlutils.ParseString(doc)
	if err != nil {
		return nil, fmt.Errorf("malformed OFX markup: %w", err)
	}

	blocks := xmlutils.Nodes(root, s.paths.BankStatements)
	blocks = append(blocks, xmlutils.Nodes(root, s.paths.CreditCardStatements)...)
	if len(blocks) == 0 {
		return nil, errNoStatements
	}

	var nodes []node
	for _, block := range blocks {
		for _, txn := range xmlutils.Nodes(block, s.paths.Transactions) {
			nodes = append(nodes, node{
				Amount:     xmlutils.Text(txn, s.paths.Amount),
				DatePosted: xmlutils.Text(txn, s.paths.DatePosted),
				DateUser:   xmlutils.Text(txn, s.paths.DateUser),
				Memo:       xmlutils.Text(txn, s.paths.Memo),
				Name:       xmlutils.Text(txn, s.paths.Name),
				FITID:      xmlutils.Text(txn, s.paths.FITID),
			})
		}
	}
	return nodes, nil
}
