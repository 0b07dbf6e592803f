package models

// KPIs are the scalar metrics shown at the top of the dashboard.
type KPIs struct {
	ToolsInAlert        int   `json:"toolsInAlert"`
	ProductionThisMonth int64 `json:"productionThisMonth"`
	SwapsThisMonth      int   `json:"swapsThisMonth"`
}

// MoldTotal is a mold with an aggregated quantity.
type MoldTotal struct {
	MoldID string `json:"moldId"`
	Total  int64  `json:"total"`
}

// Charts holds the chart datasets of the dashboard.
type Charts struct {
	StatusCounts         map[Condition]int
	Top5ProductionByMold []MoldTotal
	ScrapByMold          map[string]int64
	SwapsByMonthAndMold  map[MonthYear]map[string][]string
	MaxScrap             int64
}

// Dashboard bundles KPIs and charts computed for a reference month.
type Dashboard struct {
	Month  MonthYear
	KPIs   KPIs
	Charts Charts
}
