package categorizer

import (
	"context"
	"strings"

	"fjacquet/statement-import/internal/models"
)

// CategorizationStrategy is one matching tier. Categorize returns the first
// category of categories it accepts for description. Strategies never fail;
// no match is reported as false.
type CategorizationStrategy interface {
	Categorize(ctx context.Context, description string, categories []models.Category) (*models.Category, bool)
	Name() string
}

// ExactStrategy matches when the description contains the category name or
// the category name contains the description.
type ExactStrategy struct{}

func (ExactStrategy) Name() string {
	return string(MatchExact)
}

func (ExactStrategy) Categorize(_ context.Context, description string, categories []models.Category) (*models.Category, bool) {
	desc := fold(description)
	if desc == "" {
		return nil, false
	}
	for i := range categories {
		name := fold(categories[i].Name)
		if name == "" {
			continue
		}
		if strings.Contains(desc, name) || strings.Contains(name, desc) {
			return &categories[i], true
		}
	}
	return nil, false
}

type domainEntry struct {
	domain   string
	keywords []string
}

// DomainKeywordStrategy matches a category whose name contains a domain key
// when the description contains one of that domain's keywords.
type DomainKeywordStrategy struct {
	entries []domainEntry
}

// NewDomainKeywordStrategy folds the table once up front.
func NewDomainKeywordStrategy(table []DomainKeywords) *DomainKeywordStrategy {
	entries := make([]domainEntry, 0, len(table))
	for _, d := range table {
		domain := fold(d.Domain)
		if domain == "" {
			continue
		}
		entries = append(entries, domainEntry{domain: domain, keywords: foldAll(d.Keywords)})
	}
	return &DomainKeywordStrategy{entries: entries}
}

func (s *DomainKeywordStrategy) Name() string {
	return string(MatchDomainKeyword)
}

func (s *DomainKeywordStrategy) Categorize(_ context.Context, description string, categories []models.Category) (*models.Category, bool) {
	desc := fold(description)
	if desc == "" {
		return nil, false
	}
	for i := range categories {
		name := fold(categories[i].Name)
		for _, e := range s.entries {
			if !strings.Contains(name, e.domain) {
				continue
			}
			if containsAny(desc, e.keywords) {
				return &categories[i], true
			}
		}
	}
	return nil, false
}

type merchantEntry struct {
	keyword  string
	category string
}

// MerchantStrategy maps well-known merchants to a category-name fragment,
// regardless of which categories the tenant has.
type MerchantStrategy struct {
	entries []merchantEntry
}

// NewMerchantStrategy folds the table once up front.
func NewMerchantStrategy(table []MerchantKeyword) *MerchantStrategy {
	entries := make([]merchantEntry, 0, len(table))
	for _, m := range table {
		kw, cat := fold(m.Keyword), fold(m.Category)
		if kw == "" || cat == "" {
			continue
		}
		entries = append(entries, merchantEntry{keyword: kw, category: cat})
	}
	return &MerchantStrategy{entries: entries}
}

func (s *MerchantStrategy) Name() string {
	return string(MatchMerchant)
}

// Categorize stops at the first keyword found in the description, even when
// no category carries its fragment.
func (s *MerchantStrategy) Categorize(_ context.Context, description string, categories []models.Category) (*models.Category, bool) {
	desc := fold(description)
	if desc == "" {
		return nil, false
	}
	for _, e := range s.entries {
		if !strings.Contains(desc, e.keyword) {
			continue
		}
		for i := range categories {
			if strings.Contains(fold(categories[i].Name), e.category) {
				return &categories[i], true
			}
		}
		return nil, false
	}
	return nil, false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
