// Package domain defines the campaign analytics types and ports
package domain

import "context"

// HourDelta is the positive view delta observed in one hour of today
type HourDelta struct {
	Hour  uint8 `json:"hour"`
	Delta int64 `json:"delta_views"`
}

// ViewsByHour maps a phrase to its hourly view deltas, newest hour first
type ViewsByHour map[string][]HourDelta

// ReaderPort answers campaign analytics queries
type ReaderPort interface {
	ViewsByHour(ctx context.Context, campaignID int32) (ViewsByHour, error)
}
