package dashboard

import (
	"errors"

	"StockDashboard/internal/resolver"
)

var (
	// ErrMissingCompany is returned when no company was entered.
	ErrMissingCompany = errors.New("enter a company name or 6-digit code")
	// ErrIncompleteRange is returned when only one end of the date range is set.
	ErrIncompleteRange = errors.New("select both a start and an end date")
	// ErrInvalidRange is returned when the start date is after the end date.
	ErrInvalidRange = errors.New("start date must not be after end date")
	// ErrNoData is returned when the range holds no trading days.
	ErrNoData = errors.New("no price data for the selected period")
)

// Severity classifies an error for display.
type Severity string

const (
	SeverityNone    Severity = ""
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// SeverityOf maps a Build error to the banner it should be shown in.
func SeverityOf(err error) Severity {
	switch {
	case err == nil:
		return SeverityNone
	case errors.Is(err, ErrNoData):
		return SeverityInfo
	case errors.Is(err, ErrMissingCompany),
		errors.Is(err, ErrIncompleteRange),
		errors.Is(err, ErrInvalidRange),
		errors.Is(err, resolver.ErrEmptyInput):
		return SeverityWarning
	default:
		return SeverityError
	}
}
