package ofxparser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"fjacquet/statement-import/internal/dateutils"
)

type ofxgoStrategy struct{}

func (ofxgoStrategy) Name() string { return StrategyOFXGo }

func (ofxgoStrategy) Extract(content []byte) ([]node, error) {
	resp, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file (%d bytes): %w", len(content), err)
	}

	var lists []*ofxgo.TransactionList
	for i, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			return nil, fmt.Errorf("bank message %d: expected *ofxgo.StatementResponse, got %T", i, msg)
		}
		lists = append(lists, stmt.BankTranList)
	}
	for i, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			return nil, fmt.Errorf("credit card message %d: expected *ofxgo.CCStatementResponse, got %T", i, msg)
		}
		lists = append(lists, stmt.BankTranList)
	}
	if len(lists) == 0 {
		return nil, errNoStatements
	}

	var nodes []node
	for _, list := range lists {
		if list == nil {
			continue
		}
		for _, txn := range list.Transactions {
			nodes = append(nodes, node{
				Amount:     txn.TrnAmt.Rat.FloatString(4),
				DatePosted: stamp(dateOf(txn.DtPosted)),
				DateUser:   stamp(dateOf(txn.DtUser)),
				Memo:       strings.TrimSpace(txn.Memo.String()),
				Name:       strings.TrimSpace(txn.Name.String()),
				FITID:      strings.TrimSpace(txn.FiTID.String()),
			})
		}
	}
	return nodes, nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateutils.DateLayoutOFX)
}

// dateOf reads an ofxgo date field, which may be optional.
func dateOf(v interface{}) time.Time {
	switch d := v.(type) {
	case ofxgo.Date:
		return d.Time
	case *ofxgo.Date:
		if d != nil {
			return d.Time
		}
	}
	return time.Time{}
}
