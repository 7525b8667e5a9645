// Package resolver maps user input to a ticker code.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"StockDashboard/internal/directory"
	"StockDashboard/internal/model"
)

var (
	// ErrEmptyInput is returned for blank input.
	ErrEmptyInput = errors.New("company name is empty")
	// ErrNotFound is returned when a name is not in the directory.
	ErrNotFound = errors.New("company not found")
)

// Source supplies the current directory snapshot.
type Source interface {
	Get(ctx context.Context) (*directory.Directory, error)
}

// Snapshotter is implemented by sources that can return an already loaded
// snapshot without I/O. Code input uses it to fill in the company name.
type Snapshotter interface {
	Snapshot() *directory.Directory
}

// Resolver resolves company names against a directory.
type Resolver struct {
	Source Source
}

// New creates a Resolver.
func New(src Source) *Resolver {
	return &Resolver{Source: src}
}

// Resolve returns the company for input. A 6-digit numeric input is taken
// as a code and returned without consulting the directory; it is enriched
// with a name only when a snapshot is already cached.
func (r *Resolver) Resolve(ctx context.Context, input string) (model.Company, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.Company{}, ErrEmptyInput
	}

	if IsCode(input) {
		c := model.Company{Name: input, Code: input}
		if cached, ok := r.Source.(Snapshotter); ok {
			if known, found := cached.Snapshot().ByCode(input); found {
				c = known
			}
		}
		return c, nil
	}

	dir, err := r.Source.Get(ctx)
	if err != nil {
		return model.Company{}, fmt.Errorf("load company list: %w", err)
	}
	c, ok := dir.Lookup(input)
	if !ok {
		return model.Company{}, fmt.Errorf("%w: %q, try entering the 6-digit code instead", ErrNotFound, input)
	}
	return c, nil
}

// IsCode reports whether s is exactly six ASCII digits.
func IsCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
