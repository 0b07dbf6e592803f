package models

import "time"

// ScrapEntry is the rejected-unit count of a mold for one month.
type ScrapEntry struct {
	MoldID    string
	Month     MonthYear
	Quantity  int64
	UpdatedAt time.Time
}

// ScrapTable maps month -> mold -> quantity.
type ScrapTable map[MonthYear]map[string]int64
