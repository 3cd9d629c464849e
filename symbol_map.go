// Copyright (c) 2024 Neomantra Corp
//
// Adapted from the Kraken asset/feedcode mapping (see DESIGN.md).
//

package mbp

import "fmt"

// assetToFeedcode is the total (Asset, Market) -> feedcode table.
// It is the single source of truth; feedcodeToAsset/feedcodeToMarket are
// derived from it once in init().
var assetToFeedcode = map[Market]map[Asset]string{
	Market_Spot: {
		Asset_BTC:  "XXBTZUSD",
		Asset_ETH:  "XETHZUSD",
		Asset_WIF:  "WIFUSD",
		Asset_XRP:  "XXRPZUSD",
		Asset_SOL:  "SOLUSD",
		Asset_DOGE: "XDGUSD",
		Asset_TRX:  "TRXUSD",
		Asset_ADA:  "ADAUSD",
		Asset_AVAX: "AVAXUSD",
		Asset_SHIB: "SHIBUSD",
		Asset_DOT:  "DOTUSD",
	},
	Market_UsdFuture: {
		Asset_BTC:  "PF_XBTUSD",
		Asset_ETH:  "PF_ETHUSD",
		Asset_WIF:  "PF_WIFUSD",
		Asset_XRP:  "PF_XRPUSD",
		Asset_SOL:  "PF_SOLUSD",
		Asset_DOGE: "PF_DOGEUSD",
		Asset_TRX:  "PF_TRXUSD",
		Asset_ADA:  "PF_ADAUSD",
		Asset_AVAX: "PF_AVAXUSD",
		Asset_SHIB: "PF_SHIBUSD",
		Asset_DOT:  "PF_DOTUSD",
	},
}

var (
	feedcodeToAsset  map[string]Asset
	feedcodeToMarket map[string]Market
)

func init() {
	feedcodeToAsset = make(map[string]Asset)
	feedcodeToMarket = make(map[string]Market)
	for market, byAsset := range assetToFeedcode {
		for asset, feedcode := range byAsset {
			feedcodeToAsset[feedcode] = asset
			feedcodeToMarket[feedcode] = market
		}
	}
}

// AssetToFeedcode is total over (Asset, Market): every enumerated asset has
// a feedcode in every enumerated market.
func AssetToFeedcode(asset Asset, market Market) (string, error) {
	byAsset, ok := assetToFeedcode[market]
	if !ok {
		return "", fmt.Errorf("%w: unknown market %v", ErrInvalidSymbol, market)
	}
	feedcode, ok := byAsset[asset]
	if !ok {
		return "", fmt.Errorf("%w: unknown asset %v", ErrInvalidSymbol, asset)
	}
	return feedcode, nil
}

// FeedcodeToAsset is partial: unrecognized feedcodes fail with ErrInvalidSymbol.
func FeedcodeToAsset(feedcode string) (Asset, error) {
	asset, ok := feedcodeToAsset[feedcode]
	if !ok {
		return 0, fmt.Errorf("%w: unknown feedcode %q", ErrInvalidSymbol, feedcode)
	}
	return asset, nil
}

// FeedcodeToMarket is partial: unrecognized feedcodes fail with ErrInvalidSymbol.
func FeedcodeToMarket(feedcode string) (Market, error) {
	market, ok := feedcodeToMarket[feedcode]
	if !ok {
		return 0, fmt.Errorf("%w: unknown feedcode %q", ErrInvalidSymbol, feedcode)
	}
	return market, nil
}

// IsKnownFeedcode reports whether feedcode appears in the symbol table,
// used by path validation (paths.go) without needing the asset/market pair.
func IsKnownFeedcode(feedcode string) bool {
	_, ok := feedcodeToAsset[feedcode]
	return ok
}
