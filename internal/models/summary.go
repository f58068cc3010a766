package models

// DayCount is one weekday's settlement count in the weekly summary.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// TodayDelivery breaks today's deliveries down by pickup location.
type TodayDelivery struct {
	Total        int `json:"total"`
	KingsPark    int `json:"kingsPark"`
	EasternCreek int `json:"easternCreek"`
}

// WeeklySummary feeds the admin dashboard.
type WeeklySummary struct {
	TotalOrders     int           `json:"totalOrders"`
	ExpectedRevenue int           `json:"expectedRevenue"`
	OrdersByDay     []DayCount    `json:"ordersByDay"`
	TodayDelivery   TodayDelivery `json:"todayDelivery"`
}

// SettlementStats is the per-date settlement report.
type SettlementStats struct {
	Date              string         `json:"date"`
	TotalOrders       int            `json:"total_orders"`
	SettledOrders     int            `json:"settled_orders"`
	UnsettledOrders   int            `json:"unsettled_orders"`
	LocationBreakdown map[string]int `json:"location_breakdown"`
}
