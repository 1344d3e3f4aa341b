package usecase

import (
	"context"

	"github.com/rupeex/go-rupeex-client/domain"
	"github.com/rupeex/go-rupeex-client/logger"
)

type OrderAPI interface {
	SubmitOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Transaction, error)
}

type refetcher interface {
	Refetch(ctx context.Context) error
}

// TradingUseCase is the view-consumer contract for trade submission: after
// the local mutating action the affected stores are refetched, because the
// server's push for its effect is not guaranteed to arrive in bounded time.
type TradingUseCase struct {
	api          OrderAPI
	balance      refetcher
	transactions refetcher
}

func NewTradingUseCase(api OrderAPI, balance, transactions refetcher) *TradingUseCase {
	return &TradingUseCase{
		api:          api,
		balance:      balance,
		transactions: transactions,
	}
}

func (uc *TradingUseCase) SubmitOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Transaction, error) {
	tx, err := uc.api.SubmitOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	log := logger.GetLogger().WithComponent("trading")
	if err := uc.balance.Refetch(ctx); err != nil {
		log.WithError(err).Warn("balance refetch after order failed")
	}
	if err := uc.transactions.Refetch(ctx); err != nil {
		log.WithError(err).Warn("transactions refetch after order failed")
	}

	return tx, nil
}
