package model

import "time"

// Staff identifies a staff member shown on dashboards.
type Staff struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role,omitempty"`
}

// StaffAggregate holds period totals summed per staff member by the backend.
type StaffAggregate struct {
	StaffID      string  `json:"staffId"`
	DisplayName  string  `json:"displayName"`
	TotalQtySold float64 `json:"totalQtySold"`
	TotalProfit  float64 `json:"totalProfit"`
	TotalPoints  float64 `json:"totalPoints"`
}

// LeaderboardEntry is one ranked row of a leaderboard.
type LeaderboardEntry struct {
	StaffAggregate
	Rank int `json:"rank"`
	// Intensity is a presentation hint in [0,1]; 1 for the top rank.
	Intensity float64 `json:"intensity"`
}

// Sale is one sales record attributed to a staff member. The backend sums
// sales into StaffAggregate totals per period.
type Sale struct {
	ID      string    `json:"id"`
	StaffID string    `json:"staffId"`
	Qty     float64   `json:"qty"`
	Profit  float64   `json:"profit"`
	SoldAt  time.Time `json:"soldAt"`
}
