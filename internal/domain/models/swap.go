package models

import "time"

// SwapEvent records one physical tool replacement. It is never mutated or deleted.
type SwapEvent struct {
	ID                   string
	MoldID               string
	ToolID               string
	ProductionBeforeSwap int64
	SwappedAt            time.Time
}
