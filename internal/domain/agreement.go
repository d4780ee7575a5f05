package domain

import (
	"strings"
	"time"
)

// Agreement is a fixed-term customer volume target.
type Agreement struct {
	ID           string    `json:"id" db:"id"`
	CustomerCode string    `json:"customer_code" db:"customer_code"`
	CustomerName string    `json:"customer_name" db:"customer_name"`
	StartDate    time.Time `json:"start_date" db:"start_date"`
	EndDate      time.Time `json:"end_date" db:"end_date"`
	TargetVolume float64   `json:"target_volume" db:"target_volume"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Covers reports whether line belongs to the agreement: same customer code and a
// document date inside [StartDate, EndDate], both ends inclusive.
func (a Agreement) Covers(line TransactionLine) bool {
	code := strings.TrimSpace(line.CustomerCode)
	if code == "" || code != strings.TrimSpace(a.CustomerCode) {
		return false
	}
	d := StartOfDay(line.DocumentDate)
	return !d.Before(StartOfDay(a.StartDate)) && !d.After(StartOfDay(a.EndDate))
}

// TargetResult is an agreement with its achieved core volume.
type TargetResult struct {
	Agreement
	AchievedVolume float64 `json:"achieved_volume"`
	AchievementPct float64 `json:"achievement_pct"`
}

// TargetSummary is the target-vs-achieved report across agreements.
type TargetSummary struct {
	Results       []TargetResult `json:"results"`
	TotalTarget   float64        `json:"total_target"`
	TotalAchieved float64        `json:"total_achieved"`
	OverallPct    float64        `json:"overall_pct"`
}

// AchievementPct returns achieved*100/target, or 0 for a non-positive target.
func AchievementPct(achieved, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return achieved * 100 / target
}
