// Copyright (c) 2024 Neomantra Corp

package mbp_test

import (
	"github.com/krakenquant/mbpreplay"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Symbol Mapping", func() {
	allAssets := []mbp.Asset{
		mbp.Asset_BTC, mbp.Asset_ETH, mbp.Asset_WIF, mbp.Asset_XRP, mbp.Asset_SOL,
		mbp.Asset_DOGE, mbp.Asset_TRX, mbp.Asset_ADA, mbp.Asset_AVAX, mbp.Asset_SHIB, mbp.Asset_DOT,
	}
	allMarkets := []mbp.Market{mbp.Market_Spot, mbp.Market_UsdFuture}

	It("round-trips every (asset, market) pair", func() {
		for _, asset := range allAssets {
			for _, market := range allMarkets {
				feedcode, err := mbp.AssetToFeedcode(asset, market)
				Expect(err).To(BeNil())

				gotAsset, err := mbp.FeedcodeToAsset(feedcode)
				Expect(err).To(BeNil())
				Expect(gotAsset).To(Equal(asset))

				gotMarket, err := mbp.FeedcodeToMarket(feedcode)
				Expect(err).To(BeNil())
				Expect(gotMarket).To(Equal(market))
			}
		}
	})

	It("fails with InvalidSymbol for an unrecognized feedcode", func() {
		_, err := mbp.FeedcodeToAsset("nonsense")
		Expect(err).To(MatchError(mbp.ErrInvalidSymbol))

		_, err = mbp.FeedcodeToMarket("nonsense")
		Expect(err).To(MatchError(mbp.ErrInvalidSymbol))
	})

	It("reports known feedcodes via IsKnownFeedcode", func() {
		Expect(mbp.IsKnownFeedcode("XXBTZUSD")).To(BeTrue())
		Expect(mbp.IsKnownFeedcode("nonsense")).To(BeFalse())
	})
})
