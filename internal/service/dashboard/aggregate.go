// Package dashboard derives KPIs and chart datasets from the current tool
// set, the swap history and the scrap ledger. Nothing is cached: every call
// recomputes from the records it is given.
package dashboard

import (
	"sort"
	"time"

	"github.com/mamadbah2/toolwear/internal/domain/models"
)

const topMolds = 5

// Input is the record set a dashboard is computed from.
type Input struct {
	Tools []models.Tool // active tools with their production history
	Swaps []models.SwapEvent
	Scrap []models.ScrapEntry
}

// Compute builds the dashboard for the month containing ref, evaluated in
// ref's location.
func Compute(in Input, ref time.Time) models.Dashboard {
	month := models.MonthOf(ref)
	return models.Dashboard{
		Month:  month,
		KPIs:   computeKPIs(in, month, ref.Location()),
		Charts: computeCharts(in, ref.Location()),
	}
}

func computeKPIs(in Input, month models.MonthYear, loc *time.Location) models.KPIs {
	var kpis models.KPIs
	for _, t := range in.Tools {
		if t.Condition != models.ConditionOK {
			kpis.ToolsInAlert++
		}
		for _, e := range t.ProductionHistory {
			if e.Date.MonthYear() == month {
				kpis.ProductionThisMonth += e.Pieces
			}
		}
	}
	for _, s := range in.Swaps {
		if month.Contains(s.SwappedAt.In(loc)) {
			kpis.SwapsThisMonth++
		}
	}
	return kpis
}

func computeCharts(in Input, loc *time.Location) models.Charts {
	charts := models.Charts{
		StatusCounts:        make(map[models.Condition]int, len(models.Conditions)),
		ScrapByMold:         make(map[string]int64),
		SwapsByMonthAndMold: make(map[models.MonthYear]map[string][]string),
		MaxScrap:            1,
	}

	for _, c := range models.Conditions {
		charts.StatusCounts[c] = 0
	}
	for _, t := range in.Tools {
		charts.StatusCounts[t.Condition]++
	}

	charts.Top5ProductionByMold = topProduction(in.Tools, topMolds)

	for _, e := range in.Scrap {
		charts.ScrapByMold[e.MoldID] += e.Quantity
	}
	for _, total := range charts.ScrapByMold {
		if total > charts.MaxScrap {
			charts.MaxScrap = total
		}
	}

	// Swaps arrive most recent first and keep that order inside each bucket.
	for _, s := range in.Swaps {
		month := models.MonthOf(s.SwappedAt.In(loc))
		byMold, ok := charts.SwapsByMonthAndMold[month]
		if !ok {
			byMold = make(map[string][]string)
			charts.SwapsByMonthAndMold[month] = byMold
		}
		byMold[s.MoldID] = append(byMold[s.MoldID], s.ToolID)
	}

	return charts
}

// topProduction sums accumulated production per mold and keeps the n
// largest. Equal totals are ordered by mold id.
func topProduction(tools []models.Tool, n int) []models.MoldTotal {
	totals := make(map[string]int64)
	for _, t := range tools {
		totals[t.MoldID] += t.AccumulatedProduction
	}

	ranked := make([]models.MoldTotal, 0, len(totals))
	for moldID, total := range totals {
		ranked = append(ranked, models.MoldTotal{MoldID: moldID, Total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].MoldID < ranked[j].MoldID
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
