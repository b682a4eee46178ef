package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultMoneyUnifyBaseURL = "https://api.moneyunify.one/payments"

type MoneyUnifyConfig struct {
	// AuthID authenticates every request/verify call with the provider.
	AuthID string

	// BaseURL of the payments API, without trailing slash.
	BaseURL string

	Client *http.Client
	Logger *slog.Logger
}

// MoneyUnifyService talks to the MoneyUnify mobile-money API: request a
// collection from a payer's phone, then poll its status by transaction id.
type MoneyUnifyService struct {
	authID     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewMoneyUnifyService(cfg MoneyUnifyConfig) (*MoneyUnifyService, error) {
	if strings.TrimSpace(cfg.AuthID) == "" {
		return nil, fmt.Errorf("moneyunify: auth_id is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultMoneyUnifyBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &MoneyUnifyService{
		authID:     cfg.AuthID,
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}, nil
}

// MoneyUnifyError is a non-2xx answer from the provider, carrying the
// upstream status and body text for passthrough to the caller.
type MoneyUnifyError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *MoneyUnifyError) Error() string {
	return fmt.Sprintf("moneyunify: %s failed: %d %s", e.Op, e.StatusCode, strings.TrimSpace(e.Body))
}

// MoneyUnifyResponse is the provider payload for both request and verify
// calls. Raw keeps the untouched body so handlers can pass it through.
type MoneyUnifyResponse struct {
	Message string
	Data    struct {
		TransactionID string
		Status        string
	}
	Raw json.RawMessage
}

func (r *MoneyUnifyResponse) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Message string `json:"message"`
		Data    struct {
			TransactionID string `json:"transaction_id"`
			Status        string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	r.Message = shadow.Message
	r.Data.TransactionID = shadow.Data.TransactionID
	r.Data.Status = shadow.Data.Status
	r.Raw = append(r.Raw[:0], data...)
	return nil
}

// RequestPayment asks the provider to collect the amount from the payer's
// mobile-money wallet. The returned transaction id identifies the attempt.
func (s *MoneyUnifyService) RequestPayment(ctx context.Context, amount decimal.Decimal, fromPayer string) (*MoneyUnifyResponse, error) {
	form := url.Values{}
	form.Set("from_payer", fromPayer)
	form.Set("amount", amount.String())
	form.Set("auth_id", s.authID)
	return s.post(ctx, "request", form)
}

// VerifyPayment fetches the current status of a transaction.
func (s *MoneyUnifyService) VerifyPayment(ctx context.Context, transactionID string) (*MoneyUnifyResponse, error) {
	form := url.Values{}
	form.Set("transaction_id", transactionID)
	form.Set("auth_id", s.authID)
	return s.post(ctx, "verify", form)
}

func (s *MoneyUnifyService) post(ctx context.Context, op string, form url.Values) (*MoneyUnifyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+op, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("moneyunify %s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moneyunify %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("moneyunify %s: read body: %w", op, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &MoneyUnifyError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out MoneyUnifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("moneyunify %s: decode: %w", op, err)
	}
	s.logger.Debug("moneyunify response",
		"op", op,
		"transaction_id", out.Data.TransactionID,
		"status", out.Data.Status,
	)
	return &out, nil
}
