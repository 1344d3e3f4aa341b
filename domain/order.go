package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderRequest is a market buy/sell submission. Buys are denominated in INR,
// sells in BTC.
type OrderRequest struct {
	Side      OrderSide       `json:"side"`
	AmountINR decimal.Decimal `json:"amount_inr"`
	AmountBTC decimal.Decimal `json:"amount_btc"`
}

func (r *OrderRequest) Validate() error {
	switch r.Side {
	case OrderSideBuy:
		if !r.AmountINR.IsPositive() {
			return errors.Errorf("buy amount must be positive, got %s", r.AmountINR)
		}
	case OrderSideSell:
		if !r.AmountBTC.IsPositive() {
			return errors.Errorf("sell amount must be positive, got %s", r.AmountBTC)
		}
	default:
		return errors.Errorf("unknown order side %q", r.Side)
	}
	return nil
}

// PlanRequest is a recurring-plan creation submission.
type PlanRequest struct {
	PlanType              PlanType         `json:"plan_type"`
	Frequency             PlanFrequency    `json:"frequency"`
	AmountPerExecutionINR decimal.Decimal  `json:"amount_per_execution_inr"`
	AmountPerExecutionBTC decimal.Decimal  `json:"amount_per_execution_btc"`
	RemainingExecutions   *int             `json:"remaining_executions,omitempty"`
	MaxPrice              *decimal.Decimal `json:"max_price,omitempty"`
	MinPrice              *decimal.Decimal `json:"min_price,omitempty"`
}

func (r *PlanRequest) Validate() error {
	switch r.PlanType {
	case PlanTypeDCABuy:
		if !r.AmountPerExecutionINR.IsPositive() {
			return errors.New("buy plan needs a positive INR amount per execution")
		}
	case PlanTypeDCASell:
		if !r.AmountPerExecutionBTC.IsPositive() {
			return errors.New("sell plan needs a positive BTC amount per execution")
		}
	default:
		return errors.Errorf("unknown plan type %q", r.PlanType)
	}

	switch r.Frequency {
	case PlanFrequencyHourly, PlanFrequencyDaily, PlanFrequencyWeekly, PlanFrequencyMonthly:
	default:
		return errors.Errorf("unknown plan frequency %q", r.Frequency)
	}

	return nil
}
