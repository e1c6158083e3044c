package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

// Gateway settles through an HTTP settlement gateway that fronts the
// chain: the gateway holds the hot wallet, signs transfers, and exposes
// receipt and balance lookups. This keeps key management out of the
// pipeline process.
type Gateway struct {
	baseURL      string
	tokenAddress string
	client       *http.Client
	logger       *zap.Logger
}

// GatewayOption configures a Gateway adapter
type GatewayOption func(*Gateway)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) { g.client = client }
}

// WithGatewayLogger sets the adapter logger
func WithGatewayLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = logger }
}

// NewGateway creates a live settlement adapter talking to baseURL.
// tokenAddress identifies the payment token contract the gateway
// should transfer.
func NewGateway(baseURL, tokenAddress string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL:      baseURL,
		tokenAddress: tokenAddress,
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type transferRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
	Token  string `json:"token"`
}

type transferResponse struct {
	TxHash string `json:"tx_hash"`
	Error  string `json:"error,omitempty"`
}

type receiptResponse struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
	Confirmed   bool   `json:"confirmed"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Native  string `json:"native_balance"`
	Token   string `json:"token_balance"`
}

// Transfer submits a token transfer to the gateway
func (g *Gateway) Transfer(ctx context.Context, toAddress string, amount *big.Int) (string, error) {
	body, err := json.Marshal(transferRequest{
		To:     toAddress,
		Amount: amount.String(),
		Token:  g.tokenAddress,
	})
	if err != nil {
		return "", errors.Internal("encode transfer request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transfer", bytes.NewReader(body))
	if err != nil {
		return "", errors.Settlement("build transfer request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.Settlement("gateway transfer failed", err)
	}
	defer resp.Body.Close()

	var out transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Settlement("decode transfer response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.TypeSettlement, "gateway transfer rejected (%d): %s", resp.StatusCode, out.Error)
	}
	if out.TxHash == "" {
		return "", errors.Newf(errors.TypeSettlement, "gateway returned no transaction hash")
	}

	g.logger.Info("transfer submitted",
		zap.String("to", toAddress),
		zap.String("tx_hash", out.TxHash))

	return out.TxHash, nil
}

// WaitForConfirmation polls the gateway's receipt endpoint with
// exponential backoff until the transfer confirms or timeout elapses
func (g *Gateway) WaitForConfirmation(ctx context.Context, reference string, timeout time.Duration) (*Receipt, error) {
	deadline := time.Now().Add(timeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	interval := 500 * time.Millisecond
	for {
		receipt, err := g.fetchReceipt(ctx, reference)
		if err == nil && receipt.Confirmed {
			return receipt, nil
		}
		if err != nil && !errors.IsType(err, errors.TypeNotFound) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, errors.SettlementTimeout(
				fmt.Sprintf("transfer %s unconfirmed after %s", reference, timeout))
		}

		next, werr := pollWait(ctx, interval, 8*time.Second)
		if werr != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, errors.SettlementTimeout(
					fmt.Sprintf("transfer %s unconfirmed after %s", reference, timeout))
			}
			return nil, werr
		}
		interval = next
	}
}

func (g *Gateway) fetchReceipt(ctx context.Context, reference string) (*Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/receipt/"+reference, nil)
	if err != nil {
		return nil, errors.Settlement("build receipt request", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Settlement("gateway receipt lookup failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFound("receipt", reference)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.TypeSettlement, "gateway receipt lookup returned %d", resp.StatusCode)
	}

	var out receiptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Settlement("decode receipt response", err)
	}
	return &Receipt{
		BlockNumber: out.BlockNumber,
		GasUsed:     out.GasUsed,
		Confirmed:   out.Confirmed,
	}, nil
}

// GetBalance queries the gateway for an address's balances
func (g *Gateway) GetBalance(ctx context.Context, address string) (*Balance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/balance/"+address, nil)
	if err != nil {
		return nil, errors.Settlement("build balance request", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Settlement("gateway balance lookup failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.TypeSettlement, "gateway balance lookup returned %d", resp.StatusCode)
	}

	var out balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Settlement("decode balance response", err)
	}

	native, err := decimal.NewFromString(out.Native)
	if err != nil {
		return nil, errors.Settlement("parse native balance", err)
	}
	token, err := decimal.NewFromString(out.Token)
	if err != nil {
		return nil, errors.Settlement("parse token balance", err)
	}

	return &Balance{
		Address: address,
		Native:  native,
		Token:   token,
	}, nil
}
