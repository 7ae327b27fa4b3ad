package domain

import "time"

// UsageRecord is one immutable entry in the durable usage log.
// Field order mirrors the log format: timestamp, model, token counts,
// costs, originating prompt, conversation id.
type UsageRecord struct {
	Timestamp      time.Time
	Model          string
	InputTokens    int
	OutputTokens   int
	CostInputUSD   float64
	CostOutputUSD  float64
	CostTotalUSD   float64
	Prompt         string
	ConversationID string
}
