package ws

import (
	"time"
)

type EventType string

const (
	EventRoundPlayed     EventType = "round.played"
	EventDatasetReloaded EventType = "dataset.reloaded"
)

type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
