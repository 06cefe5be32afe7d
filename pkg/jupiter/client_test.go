package jupiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blink-swap/pkg/types"
)

var (
	solAsset  = types.Asset{Mint: solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"), Symbol: "SOL", Name: "Solana", Decimals: 9}
	usdcAsset = types.Asset{Mint: solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"), Symbol: "USDC", Name: "USD Coin", Decimals: 6}
)

func validRequest() types.QuoteRequest {
	return types.QuoteRequest{
		InputAsset:  solAsset,
		OutputAsset: usdcAsset,
		InputAmount: decimal.NewFromInt(1),
		SlippageBps: 50,
	}
}

const quoteBody = `{
	"inAmount": "1000000000",
	"outAmount": "150000000",
	"otherAmountThreshold": "149250000",
	"priceImpactPct": "0.02",
	"routePlan": [
		{"swapInfo": {
			"ammKey": "amm1",
			"label": "Orca",
			"inputMint": "So11111111111111111111111111111111111111112",
			"outputMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			"feeAmount": "2500000",
			"feeMint": "So11111111111111111111111111111111111111112"
		}}
	]
}`

func TestFetchRoute(t *testing.T) {
	user := solana.NewWallet().PublicKey()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v6/quote":
			assert.Equal(t, solAsset.Mint.String(), r.URL.Query().Get("inputMint"))
			assert.Equal(t, usdcAsset.Mint.String(), r.URL.Query().Get("outputMint"))
			assert.Equal(t, "1000000000", r.URL.Query().Get("amount"))
			assert.Equal(t, "50", r.URL.Query().Get("slippageBps"))
			w.Write([]byte(quoteBody))
		case "/v6/swap":
			w.Write([]byte(`{"swapTransaction": "dGVtcGxhdGU="}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, user)
	route, err := client.FetchRoute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, uint64(1000000000), route.InAmount)
	assert.Equal(t, uint64(150000000), route.OutAmount)
	assert.Equal(t, uint64(149250000), route.MinOutAmount)
	assert.Equal(t, 2, route.PriceImpactBps)
	assert.Equal(t, "dGVtcGxhdGU=", route.SwapTransaction)
	assert.False(t, route.FetchedAt.IsZero())

	require.Len(t, route.Hops, 1)
	assert.Equal(t, "Orca", route.Hops[0].Venue)
	assert.Equal(t, solAsset.Mint, route.Hops[0].InputMint)
	assert.Equal(t, usdcAsset.Mint, route.Hops[0].OutputMint)
	assert.Equal(t, uint64(2500000), route.Hops[0].FeeAmount)

	// quoted display amounts honor asset precision
	assert.True(t, route.OutAmountDisplay().Equal(decimal.NewFromInt(150)))
	assert.True(t, route.InAmountDisplay().Equal(decimal.NewFromInt(1)))
}

func TestFetchRoute_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorCode": "COULD_NOT_FIND_ANY_ROUTE", "error": "No routes found for the input and output mints"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, solana.NewWallet().PublicKey())
	_, err := client.FetchRoute(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRoute))
}

func TestFetchRoute_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "internal routing failure"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, solana.NewWallet().PublicKey())
	_, err := client.FetchRoute(context.Background(), validRequest())
	require.Error(t, err)

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusInternalServerError, provErr.StatusCode)
	assert.Equal(t, "internal routing failure", provErr.Message)
}

func TestFetchRoute_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := New(srv.URL, solana.NewWallet().PublicKey())
	_, err := client.FetchRoute(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRouteUnavailable))
}

func TestFetchRoute_RejectsInvalidRequest(t *testing.T) {
	client := New("http://127.0.0.1:0", solana.NewWallet().PublicKey())

	req := validRequest()
	req.InputAmount = decimal.Zero
	_, err := client.FetchRoute(context.Background(), req)
	require.Error(t, err)

	req = validRequest()
	req.OutputAsset = req.InputAsset
	_, err = client.FetchRoute(context.Background(), req)
	require.Error(t, err)

	req = validRequest()
	req.SlippageBps = 1000
	_, err = client.FetchRoute(context.Background(), req)
	require.Error(t, err)
}
