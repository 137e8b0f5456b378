package models

// PortfolioAnalytics is the single aggregated payload served to the
// dashboard. Field names and nesting are a stable contract for UI
// consumers.
type PortfolioAnalytics struct {
	Summary              PortfolioSummary       `json:"summary"`
	TopPerformers        []Holding              `json:"top_performers"`
	BottomPerformers     []Holding              `json:"bottom_performers"`
	Holdings             []Holding              `json:"holdings"`
	MonthlyInvestments   []MonthlyCashFlow      `json:"monthly_investments"`
	MonthlyDividends     []MonthlyDividend      `json:"monthly_dividends"`
	MonthlyReturns       []MonthlyReturn        `json:"monthly_returns"`
	ReturnStatistics     ReturnStatistics       `json:"return_statistics"`
	IndustryDistribution []SectorDistribution   `json:"industry_distribution"`
	RealizedStocks       []RealizedStockSummary `json:"realized_stocks"`
	Transactions         []TransactionSummary   `json:"transactions"`
	Warnings             []Warning              `json:"warnings,omitempty"`
}

// PortfolioSummary holds the headline totals for the dashboard.
type PortfolioSummary struct {
	CurrentValue       float64 `json:"current_value"`
	TotalInvested      float64 `json:"total_invested"`
	TotalProfitLoss    float64 `json:"total_profit_loss"`
	TotalRealizedPL    float64 `json:"total_realized_pl"`
	TotalReturn        float64 `json:"total_return"`
	TotalReturnPercent float64 `json:"total_return_percent"`
	XIRR               float64 `json:"xirr"`
}

// SecurityFlow is a per-security sub-aggregate within a monthly bucket.
type SecurityFlow struct {
	SecurityID  string  `json:"security_id,omitempty"`
	DisplayName string  `json:"display_name"`
	Quantity    float64 `json:"quantity"`
	Amount      float64 `json:"amount"`
}

// MonthlyCashFlow buckets buys and sells for one calendar month.
// Month uses the "Mon-YY" label format, e.g. "Mar-24".
type MonthlyCashFlow struct {
	Month             string         `json:"month"`
	Investments       float64        `json:"investments"`
	Withdrawals       float64        `json:"withdrawals"`
	InvestmentDetails []SecurityFlow `json:"investment_details"`
	WithdrawalDetails []SecurityFlow `json:"withdrawal_details"`
}

// MonthlyDividend buckets dividend receipts for one calendar month.
type MonthlyDividend struct {
	Month   string         `json:"month"`
	Amount  float64        `json:"amount"`
	Details []SecurityFlow `json:"details"`
}

// MonthlyReturn is one entry of the mark-to-market return series.
type MonthlyReturn struct {
	Month         string  `json:"month"`
	ReturnPercent float64 `json:"return_percent"`
	ReturnAmount  float64 `json:"return_amount"`
}

// ReturnStatistics summarizes the monthly return series.
type ReturnStatistics struct {
	AverageReturnPercent     float64        `json:"average_return_percent"`
	AverageReturnAmount      float64        `json:"average_return_amount"`
	CurrentYearAvgPercent    float64        `json:"current_year_avg_percent"`
	CurrentYearAvgAmount     float64        `json:"current_year_avg_amount"`
	BestMonth                *MonthlyReturn `json:"best_month,omitempty"`
	WorstMonth               *MonthlyReturn `json:"worst_month,omitempty"`
}

// SectorDistribution aggregates open holdings for one sector.
type SectorDistribution struct {
	Sector         string  `json:"sector"`
	MarketValue    float64 `json:"market_value"`
	InvestedAmount float64 `json:"invested_amount"`
	ProfitLoss     float64 `json:"profit_loss"`
	Percentage     float64 `json:"percentage"`
	XIRR           float64 `json:"xirr"`
	CAGR           float64 `json:"cagr"`
	HoldingCount   int     `json:"holding_count"`
}
