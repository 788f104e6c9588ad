// Package events announces committed ledger state changes. The core treats
// the bus as a black box: it hands finished events to a Publisher and never
// depends on delivery for correctness.
package events

import "time"

// Topic names a ledger state change. Values match the upstream contract
// events one-to-one.
type Topic string

const (
	TopicMint     Topic = "mint"
	TopicBurn     Topic = "burn"
	TopicTransfer Topic = "transfer"
	TopicPause    Topic = "pause"
	TopicUnpause  Topic = "unpause"
)

// Event is a single announcement. From/To/Amount are populated per topic:
// mint carries To, burn carries From, transfer carries both; pause and
// unpause carry neither.
type Event struct {
	Topic     Topic
	From      string
	To        string
	Amount    int64
	Height    uint32
	Timestamp time.Time
}
