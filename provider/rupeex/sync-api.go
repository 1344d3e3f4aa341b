package rupeex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/rupeex/go-rupeex-client/domain"
	promclient "github.com/rupeex/go-rupeex-client/infrastructure/prometheus"
)

const maxErrorBodyLen = 256

// SyncAPI is the pull channel: each call returns the full current state of
// one domain from the conventional request/response API. A client-side rate
// limiter keeps refetch storms from hammering the server.
type SyncAPI struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter

	mu    sync.Mutex
	token string
}

func NewSyncAPI(endpoint string, timeout time.Duration) *SyncAPI {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SyncAPI{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
	}
}

// SetToken installs the credential used on authenticated endpoints. An empty
// token clears it (logout).
func (api *SyncAPI) SetToken(token string) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.token = token
}

func (api *SyncAPI) MarketRates(ctx context.Context) (*domain.MarketRates, error) {
	out := &domain.MarketRates{}
	if err := api.do(ctx, http.MethodGet, "/market-rates", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (api *SyncAPI) Balance(ctx context.Context) (*domain.Balance, error) {
	out := &domain.Balance{}
	if err := api.do(ctx, http.MethodGet, "/balance", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (api *SyncAPI) Transactions(ctx context.Context, page, limit int) (*domain.TransactionPage, error) {
	out := &domain.TransactionPage{}
	path := fmt.Sprintf("/transactions?page=%d&limit=%d", page, limit)
	if err := api.do(ctx, http.MethodGet, path, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (api *SyncAPI) DCAPlans(ctx context.Context) (*domain.PlanList, error) {
	out := &domain.PlanList{}
	if err := api.do(ctx, http.MethodGet, "/dca-plans", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (api *SyncAPI) AdminOverview(ctx context.Context) (*domain.AdminOverview, error) {
	out := &domain.AdminOverview{}
	if err := api.do(ctx, http.MethodGet, "/admin/overview", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitOrder places a market buy/sell order. The caller must refetch the
// balance and transaction stores afterwards; execution is not guaranteed to
// be pushed in bounded time.
func (api *SyncAPI) SubmitOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := &domain.Transaction{}
	if err := api.do(ctx, http.MethodPost, "/orders", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (api *SyncAPI) CreatePlan(ctx context.Context, req *domain.PlanRequest) (*domain.DCAPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := &domain.DCAPlan{}
	if err := api.do(ctx, http.MethodPost, "/dca-plans", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (api *SyncAPI) UpdatePlanStatus(ctx context.Context, planID string, status domain.PlanStatus) error {
	body := map[string]domain.PlanStatus{"status": status}
	return api.do(ctx, http.MethodPatch, "/dca-plans/"+planID, body, nil)
}

func (api *SyncAPI) CancelPlan(ctx context.Context, planID string) error {
	return api.do(ctx, http.MethodDelete, "/dca-plans/"+planID, nil, nil)
}

func (api *SyncAPI) do(ctx context.Context, method, path string, body, out any) error {
	if err := api.limiter.Wait(ctx); err != nil {
		return err
	}

	label := path
	if idx := strings.IndexByte(label, '?'); idx >= 0 {
		label = label[:idx]
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal %s body", path)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, api.endpoint+path, reader)
	if err != nil {
		return errors.Wrapf(err, "failed to build request for %s", path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	api.mu.Lock()
	token := api.token
	api.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := api.client.Do(req)
	if err != nil {
		promclient.PullFetchesTotal.WithLabelValues(label, "error").Inc()
		return errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		promclient.PullFetchesTotal.WithLabelValues(label, "error").Inc()
		return errors.Wrapf(err, "failed to read %s response", path)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		promclient.PullFetchesTotal.WithLabelValues(label, "error").Inc()
		snippet := raw
		if len(snippet) > maxErrorBodyLen {
			snippet = snippet[:maxErrorBodyLen]
		}
		return errors.Errorf("%s %s returned status %d: %s", method, path, res.StatusCode, snippet)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			promclient.PullFetchesTotal.WithLabelValues(label, "error").Inc()
			return errors.Wrapf(err, "failed to unmarshal %s response, data: %s", path, raw)
		}
	}

	promclient.PullFetchesTotal.WithLabelValues(label, "ok").Inc()
	return nil
}
