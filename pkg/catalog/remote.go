package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"blink-swap/pkg/types"
)

// DefaultTokenListURL is the aggregator's curated token list.
const DefaultTokenListURL = "https://token.jup.ag/strict"

const remoteFetchTimeout = 15 * time.Second

// RemoteList fetches swappable assets from a hosted token list.
type RemoteList struct {
	url    string
	client *http.Client
}

// NewRemoteList creates a token list fetcher. An empty url selects the default list.
func NewRemoteList(url string) *RemoteList {
	if url == "" {
		url = DefaultTokenListURL
	}
	return &RemoteList{
		url:    url,
		client: &http.Client{Timeout: remoteFetchTimeout},
	}
}

type tokenListEntry struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI"`
}

// Fetch downloads the token list. Entries with unparseable mints are skipped.
func (r *RemoteList) Fetch(ctx context.Context) ([]types.Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build token list request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch token list")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("token list returned status code %d", resp.StatusCode)
	}

	var entries []tokenListEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "failed to decode token list")
	}

	assets := make([]types.Asset, 0, len(entries))
	for _, e := range entries {
		mint, err := solana.PublicKeyFromBase58(e.Address)
		if err != nil {
			continue
		}
		assets = append(assets, types.Asset{
			Mint:     mint,
			Symbol:   e.Symbol,
			Name:     e.Name,
			Decimals: e.Decimals,
			LogoURI:  e.LogoURI,
		})
	}
	return assets, nil
}

// Load builds a catalog from the static assets, the injected extras and, when
// a remote list is given, the fetched token list. A remote failure falls back
// to the locally known assets so the swap form can still operate.
func Load(ctx context.Context, remote *RemoteList, extra ...types.Asset) (*Catalog, error) {
	if remote == nil {
		return New(extra...), nil
	}
	fetched, err := remote.Fetch(ctx)
	if err != nil {
		return New(extra...), err
	}
	return New(append(extra, fetched...)...), nil
}
