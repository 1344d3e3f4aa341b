package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeBuy           TransactionType = "BUY"
	TransactionTypeSell          TransactionType = "SELL"
	TransactionTypeDCABuy        TransactionType = "DCA_BUY"
	TransactionTypeDCASell       TransactionType = "DCA_SELL"
	TransactionTypeLoanDisbursal TransactionType = "LOAN_DISBURSAL"
	TransactionTypeLoanRepayment TransactionType = "LOAN_REPAYMENT"
	TransactionTypeDeposit       TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal    TransactionType = "WITHDRAWAL"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusExecuted  TransactionStatus = "EXECUTED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

type Transaction struct {
	ID             string            `json:"id"`
	Type           TransactionType   `json:"type"`
	BTCAmount      decimal.Decimal   `json:"btc_amount"`
	INRAmount      decimal.Decimal   `json:"inr_amount"`
	ExecutionPrice decimal.Decimal   `json:"execution_price"`
	Fee            decimal.Decimal   `json:"fee"`
	Status         TransactionStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	ExecutedAt     *time.Time        `json:"executed_at,omitempty"`
}

func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// IsDCA reports whether the transaction was produced by a recurring plan.
func (t *Transaction) IsDCA() bool {
	return t.Type == TransactionTypeDCABuy || t.Type == TransactionTypeDCASell
}

// TransactionPage is the pull-channel response for the transaction history.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	HasMore      bool          `json:"hasMore"`
}

// TransactionWindow is the push-channel payload: a bounded recent window of
// the history, replacing the visible list wholesale. It is not a delta.
type TransactionWindow struct {
	Transactions []Transaction `json:"transactions"`
	Timestamp    int64         `json:"timestamp"`
}
