// Package jupiter implements the price/route client against the Jupiter v6
// aggregator API. The aggregator owns the routing and pricing algorithm; this
// client only fetches routes and classifies failures.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"blink-swap/pkg/types"
)

// DefaultBaseURL is the public Jupiter v6 quote API.
const DefaultBaseURL = "https://quote-api.jup.ag"

const defaultTimeout = 30 * time.Second

// Quote-stage failure classification. Both are retryable by the caller.
var (
	// ErrRouteUnavailable indicates a network or timeout failure reaching
	// the aggregator.
	ErrRouteUnavailable = errors.New("route unavailable")
	// ErrNoRoute indicates the aggregator found no liquidity for the pair.
	ErrNoRoute = errors.New("no route for pair")
)

// ProviderError carries an error payload returned by the aggregator itself.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("aggregator error (status %d): %s", e.StatusCode, e.Message)
}

// Client calls the Jupiter v6 API for a single signer identity. It holds no
// mutable state; the caller owns the returned routes.
type Client struct {
	baseURL string
	client  *http.Client
	user    solana.PublicKey
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// New creates a route client. The user public key is baked into every swap
// transaction template the aggregator returns.
func New(baseURL string, user solana.PublicKey, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		user:    user,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// quoteResponse mirrors the aggregator's GET /v6/quote payload.
type quoteResponse struct {
	InAmount             string `json:"inAmount"`
	OutAmount            string `json:"outAmount"`
	OtherAmountThreshold string `json:"otherAmountThreshold"`
	PriceImpactPct       string `json:"priceImpactPct"`
	RoutePlan            []struct {
		SwapInfo struct {
			AmmKey     string `json:"ammKey"`
			Label      string `json:"label"`
			InputMint  string `json:"inputMint"`
			OutputMint string `json:"outputMint"`
			FeeAmount  string `json:"feeAmount"`
			FeeMint    string `json:"feeMint"`
		} `json:"swapInfo"`
	} `json:"routePlan"`
}

// swapRequest mirrors the POST /v6/swap body. The raw quote payload is passed
// back untouched, as the API requires.
type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// FetchRoute obtains a priced route and its transaction template for the
// request. It performs the network calls and nothing else: the caller is
// responsible for storing the result.
func (c *Client) FetchRoute(ctx context.Context, req types.QuoteRequest) (*types.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	amount, err := req.InputAsset.ToBaseUnits(req.InputAmount)
	if err != nil {
		return nil, err
	}

	rawQuote, err := c.getQuote(ctx, req, amount)
	if err != nil {
		return nil, err
	}

	var quote quoteResponse
	if err := json.Unmarshal(rawQuote, &quote); err != nil {
		return nil, errors.Wrap(err, "failed to decode quote response")
	}

	template, err := c.getSwapTransaction(ctx, rawQuote)
	if err != nil {
		return nil, err
	}

	route, err := buildRoute(req, quote, template)
	if err != nil {
		return nil, err
	}
	return route, nil
}

func (c *Client) getQuote(ctx context.Context, req types.QuoteRequest, amount uint64) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("inputMint", req.InputAsset.Mint.String())
	q.Set("outputMint", req.OutputAsset.Mint.String())
	q.Set("amount", strconv.FormatUint(amount, 10))
	q.Set("slippageBps", strconv.Itoa(req.SlippageBps))

	endpoint := c.baseURL + "/v6/quote?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build quote request")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(ErrRouteUnavailable, "quote request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrRouteUnavailable, "failed to read quote response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyErrorPayload(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) getSwapTransaction(ctx context.Context, rawQuote json.RawMessage) (string, error) {
	payload, err := json.Marshal(swapRequest{
		QuoteResponse:    rawQuote,
		UserPublicKey:    c.user.String(),
		WrapAndUnwrapSol: true,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal swap request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v6/swap", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "failed to build swap request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrapf(ErrRouteUnavailable, "swap request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(ErrRouteUnavailable, "failed to read swap response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyErrorPayload(resp.StatusCode, body)
	}

	var swap swapResponse
	if err := json.Unmarshal(body, &swap); err != nil {
		return "", errors.Wrap(err, "failed to decode swap response")
	}
	if swap.SwapTransaction == "" {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: "empty swap transaction"}
	}
	return swap.SwapTransaction, nil
}

// classifyErrorPayload extracts the aggregator's error message and maps
// "no liquidity" responses to ErrNoRoute. Everything else is a ProviderError
// with the upstream message preserved.
func classifyErrorPayload(statusCode int, body []byte) error {
	var payload struct {
		Error     string `json:"error"`
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	message := string(body)
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		} else if payload.Error != "" {
			message = payload.Error
		}
		switch payload.ErrorCode {
		case "COULD_NOT_FIND_ANY_ROUTE", "NO_ROUTES_FOUND", "TOKEN_NOT_TRADABLE":
			return errors.Wrap(ErrNoRoute, message)
		}
	}
	return &ProviderError{StatusCode: statusCode, Message: message}
}

func buildRoute(req types.QuoteRequest, quote quoteResponse, template string) (*types.Route, error) {
	inAmount, err := strconv.ParseUint(quote.InAmount, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse inAmount %q", quote.InAmount)
	}
	outAmount, err := strconv.ParseUint(quote.OutAmount, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse outAmount %q", quote.OutAmount)
	}
	// otherAmountThreshold is absent on some route types
	minOut := outAmount
	if quote.OtherAmountThreshold != "" {
		minOut, err = strconv.ParseUint(quote.OtherAmountThreshold, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse otherAmountThreshold %q", quote.OtherAmountThreshold)
		}
	}

	impactBps := 0
	if quote.PriceImpactPct != "" {
		pct, err := decimal.NewFromString(quote.PriceImpactPct)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse priceImpactPct %q", quote.PriceImpactPct)
		}
		impactBps = int(pct.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	}

	hops := make([]types.RouteHop, 0, len(quote.RoutePlan))
	for _, leg := range quote.RoutePlan {
		hop := types.RouteHop{Venue: leg.SwapInfo.Label}
		if mint, err := solana.PublicKeyFromBase58(leg.SwapInfo.InputMint); err == nil {
			hop.InputMint = mint
		}
		if mint, err := solana.PublicKeyFromBase58(leg.SwapInfo.OutputMint); err == nil {
			hop.OutputMint = mint
		}
		if mint, err := solana.PublicKeyFromBase58(leg.SwapInfo.FeeMint); err == nil {
			hop.FeeMint = mint
		}
		if fee, err := strconv.ParseUint(leg.SwapInfo.FeeAmount, 10, 64); err == nil {
			hop.FeeAmount = fee
		}
		hops = append(hops, hop)
	}

	return &types.Route{
		Request:         req,
		InAmount:        inAmount,
		OutAmount:       outAmount,
		MinOutAmount:    minOut,
		PriceImpactBps:  impactBps,
		Hops:            hops,
		SwapTransaction: template,
		FetchedAt:       time.Now(),
	}, nil
}
