package models

import "time"

// Offer is one normalized, priced itinerary in the canonical schema shared by
// every provider. Offers have no identity beyond their field values; the merge
// step deduplicates on (Airline, DepartAt).
type Offer struct {
	Provider        string    `json:"provider"`
	Airline         string    `json:"airline"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	DepartAt        time.Time `json:"departAt"`
	ArriveAt        time.Time `json:"arriveAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Stops           int       `json:"stops"`
	Cabin           string    `json:"cabin"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	Bags            string    `json:"bags"`
	BuyURL          string    `json:"buyUrl,omitempty"`
}
