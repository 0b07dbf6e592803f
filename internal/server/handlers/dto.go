package handlers

import (
	"time"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/service/dashboard"
)

const timestampLayout = "02/01/2006 15:04:05"

type createToolRequest struct {
	MoldID     string `json:"moldId"`
	ToolID     string `json:"toolId"`
	UsefulLife int64  `json:"usefulLife"`
	Notes      string `json:"notes"`
}

type productionRequest struct {
	Pieces int64  `json:"pieces"`
	Date   string `json:"date"`
}

type commentRequest struct {
	MoldID  string `json:"moldId"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

type scrapRequest struct {
	MoldID    string `json:"moldId"`
	MonthYear string `json:"monthYear"`
	Quantity  int64  `json:"quantity"`
}

type productionEntryResponse struct {
	Date   string `json:"date"`
	Pieces int64  `json:"pieces"`
}

type toolResponse struct {
	ID                    string                    `json:"id"`
	MoldID                string                    `json:"moldId"`
	ToolID                string                    `json:"toolId"`
	UsefulLife            int64                     `json:"usefulLife"`
	AccumulatedProduction int64                     `json:"accumulatedProduction"`
	Condition             models.Condition          `json:"condition"`
	Status                string                    `json:"status"`
	Notes                 string                    `json:"notes"`
	Warning               bool                      `json:"warning"`
	IsActive              bool                      `json:"isActive"`
	LastUpdate            string                    `json:"lastUpdate"`
	ProductionHistory     []productionEntryResponse `json:"productionHistory"`
}

type swapResponse struct {
	ID                   string `json:"id"`
	Date                 string `json:"date"`
	MoldID               string `json:"moldId"`
	ToolID               string `json:"toolId"`
	ProductionBeforeSwap int64  `json:"productionBeforeSwap"`
}

type chartsResponse struct {
	StatusCounts         map[string]int                 `json:"statusCounts"`
	Top5ProductionByMold []models.MoldTotal             `json:"top5ProductionByMold"`
	SwapsByMonthAndMold  map[string]map[string][]string `json:"swapsByMonthAndMold"`
	ScrapByMold          map[string]int64               `json:"scrapByMold"`
	MaxScrap             int64                          `json:"maxScrap"`
}

type dashboardResponse struct {
	Month       string                      `json:"month"`
	KPIs        models.KPIs                 `json:"kpis"`
	Charts      chartsResponse              `json:"charts"`
	Tools       []toolResponse              `json:"tools"`
	SwapHistory []swapResponse              `json:"swapHistory"`
	ScrapData   map[string]map[string]int64 `json:"scrapData"`
}

func newToolResponse(t *models.Tool, loc *time.Location) toolResponse {
	history := make([]productionEntryResponse, 0, len(t.ProductionHistory))
	for _, e := range t.ProductionHistory {
		history = append(history, productionEntryResponse{Date: e.Date.String(), Pieces: e.Pieces})
	}
	return toolResponse{
		ID:                    t.ID,
		MoldID:                t.MoldID,
		ToolID:                t.ToolID,
		UsefulLife:            t.UsefulLife,
		AccumulatedProduction: t.AccumulatedProduction,
		Condition:             t.Condition,
		Status:                t.Condition.Label(),
		Notes:                 t.Notes,
		Warning:               t.Warning,
		IsActive:              t.IsActive,
		LastUpdate:            t.UpdatedAt.In(loc).Format(models.DateLayout),
		ProductionHistory:     history,
	}
}

func newToolsResponse(tools []models.Tool, loc *time.Location) []toolResponse {
	out := make([]toolResponse, 0, len(tools))
	for i := range tools {
		out = append(out, newToolResponse(&tools[i], loc))
	}
	return out
}

func newSwapsResponse(swaps []models.SwapEvent, loc *time.Location) []swapResponse {
	out := make([]swapResponse, 0, len(swaps))
	for _, s := range swaps {
		out = append(out, swapResponse{
			ID:                   s.ID,
			Date:                 s.SwappedAt.In(loc).Format(timestampLayout),
			MoldID:               s.MoldID,
			ToolID:               s.ToolID,
			ProductionBeforeSwap: s.ProductionBeforeSwap,
		})
	}
	return out
}

func newScrapResponse(table models.ScrapTable) map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(table))
	for month, byMold := range table {
		out[month.String()] = byMold
	}
	return out
}

func newCommentsResponse(grouped map[models.Date][]string) map[string][]string {
	out := make(map[string][]string, len(grouped))
	for date, texts := range grouped {
		out[date.String()] = texts
	}
	return out
}

func newChartsResponse(ch models.Charts) chartsResponse {
	status := make(map[string]int, len(ch.StatusCounts))
	for c, n := range ch.StatusCounts {
		status[c.Label()] = n
	}
	swaps := make(map[string]map[string][]string, len(ch.SwapsByMonthAndMold))
	for month, byMold := range ch.SwapsByMonthAndMold {
		swaps[month.String()] = byMold
	}
	top := ch.Top5ProductionByMold
	if top == nil {
		top = []models.MoldTotal{}
	}
	return chartsResponse{
		StatusCounts:         status,
		Top5ProductionByMold: top,
		SwapsByMonthAndMold:  swaps,
		ScrapByMold:          ch.ScrapByMold,
		MaxScrap:             ch.MaxScrap,
	}
}

func newDashboardResponse(r *dashboard.Report, scrap models.ScrapTable, loc *time.Location) dashboardResponse {
	return dashboardResponse{
		Month:       r.Month.String(),
		KPIs:        r.KPIs,
		Charts:      newChartsResponse(r.Charts),
		Tools:       newToolsResponse(r.Tools, loc),
		SwapHistory: newSwapsResponse(r.SwapHistory, loc),
		ScrapData:   newScrapResponse(scrap),
	}
}
