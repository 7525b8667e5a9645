// Package directory loads and caches the exchange's list of listed companies.
package directory

import (
	"context"
	"time"

	"StockDashboard/internal/model"
)

// Loader fetches a fresh directory snapshot.
type Loader interface {
	Load(ctx context.Context) (*Directory, error)
}

// Directory is an immutable, ordered snapshot of the company listing.
type Directory struct {
	companies []model.Company
	byName    map[string]int
	FetchedAt time.Time
}

// New builds a Directory from companies in listing order.
// When a name repeats, the first occurrence wins on lookup.
func New(companies []model.Company, fetchedAt time.Time) *Directory {
	d := &Directory{
		companies: make([]model.Company, len(companies)),
		byName:    make(map[string]int, len(companies)),
		FetchedAt: fetchedAt,
	}
	copy(d.companies, companies)
	for i, c := range d.companies {
		if _, dup := d.byName[c.Name]; !dup {
			d.byName[c.Name] = i
		}
	}
	return d
}

// Lookup finds a company by exact name.
func (d *Directory) Lookup(name string) (model.Company, bool) {
	if d == nil {
		return model.Company{}, false
	}
	i, ok := d.byName[name]
	if !ok {
		return model.Company{}, false
	}
	return d.companies[i], true
}

// ByCode finds a company by its 6-digit code.
func (d *Directory) ByCode(code string) (model.Company, bool) {
	if d == nil {
		return model.Company{}, false
	}
	for _, c := range d.companies {
		if c.Code == code {
			return c, true
		}
	}
	return model.Company{}, false
}

// Len returns the number of listed companies.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.companies)
}

// Companies returns a copy of the listing.
func (d *Directory) Companies() []model.Company {
	if d == nil {
		return nil
	}
	out := make([]model.Company, len(d.companies))
	copy(out, d.companies)
	return out
}
