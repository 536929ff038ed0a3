package models

import "strings"

const (
	CabinEconomy  = "economy"
	CabinPremium  = "premium"
	CabinBusiness = "business"
)

// SearchRequest is the raw POST /search body before normalization.
type SearchRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartDate  string `json:"departDate"`
	ReturnDate  string `json:"returnDate,omitempty"`
	Pax         int    `json:"pax,omitempty"`
	Cabin       string `json:"cabin,omitempty"`
}

// Query is the canonical form of a search request. It is constructed once per
// request and never mutated afterwards.
type Query struct {
	Origin      string
	Destination string
	DepartDate  string
	ReturnDate  string
	Pax         int
	Cabin       string
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Normalize validates and canonicalizes the raw request. Origin and destination
// are trimmed and uppercased and must be exactly 3 letters; cabin must be one of
// the supported classes (empty defaults to economy); pax defaults to 1 and is
// clamped to a minimum of 1. Dates are passed through as-is; providers fail
// independently on dates they cannot use.
func (r SearchRequest) Normalize() (Query, error) {
	origin, err := normalizeIATA("origin", r.Origin)
	if err != nil {
		return Query{}, err
	}
	destination, err := normalizeIATA("destination", r.Destination)
	if err != nil {
		return Query{}, err
	}

	cabin := r.Cabin
	if cabin == "" {
		cabin = CabinEconomy
	}
	switch cabin {
	case CabinEconomy, CabinPremium, CabinBusiness:
	default:
		return Query{}, &ValidationError{Field: "cabin", Reason: "unsupported cabin class"}
	}

	pax := r.Pax
	if pax < 1 {
		pax = 1
	}

	return Query{
		Origin:      origin,
		Destination: destination,
		DepartDate:  r.DepartDate,
		ReturnDate:  r.ReturnDate,
		Pax:         pax,
		Cabin:       cabin,
	}, nil
}

func normalizeIATA(field, value string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	if len(code) != 3 || !isLetters(code) {
		return "", &ValidationError{Field: field, Reason: "must be a 3-letter IATA-style code"}
	}
	return code, nil
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
