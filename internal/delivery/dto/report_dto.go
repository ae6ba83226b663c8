package dto

type DailyCountResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// SummaryReportResponse aggregates appointments over an inclusive date range.
type SummaryReportResponse struct {
	From     string               `json:"from"`
	To       string               `json:"to"`
	Total    int64                `json:"total"`
	ByStatus map[string]int64     `json:"byStatus"`
	ByDay    []DailyCountResponse `json:"byDay"`
}
