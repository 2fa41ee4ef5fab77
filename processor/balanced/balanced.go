// Package balanced implements the processor contract against a
// Balanced-style payments HTTP API.
package balanced

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/billyproject/billy/consts"
	"github.com/billyproject/billy/processor"
)

const Name = "balanced"

func init() {
	processor.Register(Name, func(cfg processor.Config) (processor.Processor, error) {
		return New(cfg)
	})
}

// statusMap maps Balanced API statuses to transaction statuses.
var statusMap = map[string]string{
	"pending":   consts.StatusSubmitted,
	"succeeded": consts.StatusSucceeded,
	"paid":      consts.StatusSucceeded,
	"failed":    consts.StatusFailed,
	"reversed":  consts.StatusFailed,
}

type Client struct {
	apiBase string
	timeout time.Duration
	http    *http.Client
}

func New(cfg processor.Config) (*Client, error) {
	if cfg.APIBase == "" {
		return nil, fmt.Errorf("balanced: api base is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = consts.DefaultProcessorTimeoutInSec * time.Second
	}
	return &Client{
		apiBase: cfg.APIBase,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type debitRequest struct {
	AmountCents          int64  `json:"amount"`
	Currency             string `json:"currency"`
	FundingInstrumentURI string `json:"funding_instrument_uri"`
}

type refundRequest struct {
	AmountCents int64 `json:"amount"`
}

type operationResponse struct {
	URI      string `json:"uri"`
	Status   string `json:"status"`
	Sequence int64  `json:"sequence"`
}

type errorResponse struct {
	Description string `json:"description"`
}

// toCent converts a decimal amount to the integer cents the wire expects.
func toCent(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

func (c *Client) Charge(ctx context.Context, processorKey string, req processor.ChargeRequest) (processor.ChargeResult, error) {
	log.Infof("[Balanced] Submitting debit idempotency_key=%s amount=%s %s",
		req.IdempotencyKey, req.Amount.String(), req.Currency)

	body := debitRequest{
		AmountCents:          toCent(req.Amount),
		Currency:             req.Currency,
		FundingInstrumentURI: req.FundingInstrumentURI,
	}

	var res operationResponse
	err := c.do(ctx, http.MethodPost, "/debits", processorKey, req.IdempotencyKey, body, &res)
	if err != nil {
		return processor.ChargeResult{}, err
	}

	return processor.ChargeResult{
		ExternalRef: res.URI,
		Status:      mapStatus(res.Status),
	}, nil
}

func (c *Client) Refund(ctx context.Context, processorKey, externalRef string, amount decimal.Decimal) (processor.RefundResult, error) {
	log.Infof("[Balanced] Submitting refund ref=%s amount=%s", externalRef, amount.String())

	var res operationResponse
	err := c.do(ctx, http.MethodPost, externalRef+"/refunds", processorKey, "", refundRequest{AmountCents: toCent(amount)}, &res)
	if err != nil {
		return processor.RefundResult{}, err
	}
	return processor.RefundResult{
		ExternalRef: res.URI,
		Status:      mapStatus(res.Status),
	}, nil
}

func (c *Client) QueryStatus(ctx context.Context, processorKey, externalRef string) (processor.StatusResult, error) {
	var res operationResponse
	err := c.do(ctx, http.MethodGet, externalRef, processorKey, "", nil, &res)
	if err != nil {
		return processor.StatusResult{}, err
	}
	return processor.StatusResult{Status: mapStatus(res.Status), Sequence: res.Sequence}, nil
}

// VerifyCallback checks an HMAC-SHA256 hex signature over the raw payload.
// Pure and total: malformed input yields false, never an error.
func (c *Client) VerifyCallback(payload []byte, signature, callbackKey string) bool {
	return Verify(payload, signature, callbackKey)
}

// Verify is the signature check behind VerifyCallback, exported so the
// ingestion path can authenticate without a bound client.
func Verify(payload []byte, signature, callbackKey string) bool {
	if len(payload) == 0 || signature == "" || callbackKey == "" {
		return false
	}
	wire, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(callbackKey))
	mac.Write(payload)
	return hmac.Equal(wire, mac.Sum(nil))
}

// Sign produces the signature Verify expects. Used by tests and by the
// sandbox tooling that simulates processor callbacks.
func Sign(payload []byte, callbackKey string) string {
	mac := hmac.New(sha256.New, []byte(callbackKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) do(ctx context.Context, method, path, processorKey, idempotencyKey string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(processorKey, "")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failure or timeout. The remote side may still have
		// executed the operation.
		return fmt.Errorf("%w: %v", processor.ErrProcessorUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %v", err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", processor.ErrNotFound, path)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%w: %s", processor.ErrProcessorRejected, e.Description)
	default:
		return fmt.Errorf("%w: status %d", processor.ErrProcessorUnavailable, resp.StatusCode)
	}
}

func mapStatus(processorStatus string) string {
	status, ok := statusMap[processorStatus]
	if !ok {
		log.Warnf("[Balanced] Unknown status %q, default to submitted", processorStatus)
		return consts.StatusSubmitted
	}
	return status
}
