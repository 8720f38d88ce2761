package models

// ItemStatus is the outcome of one statement line.
type ItemStatus string

const (
	StatusImported  ItemStatus = "imported"
	StatusDuplicate ItemStatus = "duplicate"
	StatusError     ItemStatus = "error"
)

// ItemResult reports what happened to one statement line.
type ItemResult struct {
	Description   string     `json:"description"`
	Status        ItemStatus `json:"status"`
	TransactionID string     `json:"transactionId,omitempty"`
	CategoryID    *string    `json:"categoryId,omitempty"`
	Message       string     `json:"message,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// Summary is the caller-facing result of one ingestion request.
// Imported + Duplicates + Errors always equals Total.
type Summary struct {
	Imported    int          `json:"imported"`
	Duplicates  int          `json:"duplicates"`
	Errors      int          `json:"errors"`
	Categorized int          `json:"categorized"`
	Total       int          `json:"total"`
	Results     []ItemResult `json:"results"`
}

// NewSummary returns an empty summary whose Results marshal as [].
func NewSummary() *Summary {
	return &Summary{Results: []ItemResult{}}
}

// AddImported records an imported line.
func (s *Summary) AddImported(description, transactionID string, categoryID *string) {
	s.Imported++
	if categoryID != nil {
		s.Categorized++
	}
	s.add(ItemResult{
		Description:   description,
		Status:        StatusImported,
		TransactionID: transactionID,
		CategoryID:    categoryID,
	})
}

// AddDuplicate records a line that already exists in the ledger.
func (s *Summary) AddDuplicate(description, message string) {
	s.Duplicates++
	s.add(ItemResult{Description: description, Status: StatusDuplicate, Message: message})
}

// AddError records a line that could not be imported.
func (s *Summary) AddError(description string, err error) {
	s.Errors++
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s.add(ItemResult{Description: description, Status: StatusError, Error: msg})
}

func (s *Summary) add(r ItemResult) {
	s.Total++
	s.Results = append(s.Results, r)
}

// Consistent reports whether the counters add up.
func (s *Summary) Consistent() bool {
	return s.Imported+s.Duplicates+s.Errors == s.Total && s.Total == len(s.Results)
}

// RecategorizeSummary reports a recategorization pass over a tenant's
// uncategorized rows.
type RecategorizeSummary struct {
	Scanned     int `json:"scanned"`
	Categorized int `json:"categorized"`
	Failed      int `json:"failed"`
}
