package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlanType string

const (
	PlanTypeDCABuy  PlanType = "DCA_BUY"
	PlanTypeDCASell PlanType = "DCA_SELL"
)

type PlanFrequency string

const (
	PlanFrequencyHourly  PlanFrequency = "HOURLY"
	PlanFrequencyDaily   PlanFrequency = "DAILY"
	PlanFrequencyWeekly  PlanFrequency = "WEEKLY"
	PlanFrequencyMonthly PlanFrequency = "MONTHLY"
)

type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusPaused    PlanStatus = "PAUSED"
	PlanStatusCompleted PlanStatus = "COMPLETED"
)

// PlanPerformance is the server-computed execution history summary of a plan.
type PlanPerformance struct {
	TotalInvestedINR    decimal.Decimal `json:"total_invested_inr"`
	TotalBTCBought      decimal.Decimal `json:"total_btc_bought"`
	AvgExecutionPrice   decimal.Decimal `json:"avg_execution_price"`
	ExecutionsCompleted int             `json:"executions_completed"`
}

type DCAPlan struct {
	ID                    string           `json:"id"`
	PlanType              PlanType         `json:"plan_type"`
	Frequency             PlanFrequency    `json:"frequency"`
	AmountPerExecutionINR decimal.Decimal  `json:"amount_per_execution_inr"`
	AmountPerExecutionBTC decimal.Decimal  `json:"amount_per_execution_btc"`
	RemainingExecutions   *int             `json:"remaining_executions,omitempty"`
	Status                PlanStatus       `json:"status"`
	NextExecutionAt       time.Time        `json:"next_execution_at"`
	MaxPrice              *decimal.Decimal `json:"max_price,omitempty"`
	MinPrice              *decimal.Decimal `json:"min_price,omitempty"`
	Performance           *PlanPerformance `json:"performance,omitempty"`
}

func (p *DCAPlan) IsActive() bool {
	return p.Status == PlanStatusActive
}

// PlanList is the full recurring-plan view, used by both channels.
type PlanList struct {
	Plans       []DCAPlan `json:"plans"`
	TotalPlans  int       `json:"total_plans"`
	ActivePlans int       `json:"active_plans"`
	PausedPlans int       `json:"paused_plans"`
}
