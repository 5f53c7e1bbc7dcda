package model

import "github.com/shopspring/decimal"

// RevenuePoint 一個統計點：label（日/月/年）+ 金額
type RevenuePoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Statistics 營收統計，只計入 Completed 訂單
type Statistics struct {
	TotalRevenueCurrentYear  decimal.Decimal `json:"total_revenue_current_year"`
	TotalRevenueCurrentMonth decimal.Decimal `json:"total_revenue_current_month"`
	DailyRevenueLast30Days   []RevenuePoint  `json:"daily_revenue_last_30_days"`
	MonthlyRevenue           []RevenuePoint  `json:"monthly_revenue"`
	YearlyRevenue            []RevenuePoint  `json:"yearly_revenue"`
}
