// Copyright (c) 2024 Neomantra Corp

package hist_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"time"

	"github.com/krakenquant/mbpreplay"
	"github.com/krakenquant/mbpreplay/hist"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	It("emits the scenario-2 snapshot sequence for a single PLACED then CANCELLED", func() {
		day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		chunk0Since := day.UTC().Format(time.RFC3339)

		placedTime := (day.Unix() + 1) * 1000
		cancelledTime := (day.Unix() + 10) * 1000

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "/executions") || r.URL.Query().Get("since") != chunk0Since {
				w.Write([]byte(`{"elements":[],"continuationToken":""}`))
				return
			}
			body := fmt.Sprintf(`{"elements":[
				{"event":{"type":"OrderPlaced","direction":"Sell","limitPrice":"1","quantity":"2","timestamp":%d}},
				{"event":{"type":"OrderCancelled","direction":"Buy","limitPrice":"7","quantity":"8","timestamp":%d}}
			],"continuationToken":""}`, placedTime, cancelledTime)
			w.Write([]byte(body))
		}))
		defer srv.Close()

		root := GinkgoT().TempDir()
		client := hist.NewClient(srv.URL, "test-key")
		builder, err := hist.NewBuilder(client, root, mbp.Asset_BTC, mbp.Market_Spot)
		Expect(err).To(BeNil())

		Expect(builder.BuildDay(context.Background(), day)).To(Succeed())

		path := filepath.Join(root, "snapshots", "XXBTZUSD", "01_01_2024.bin")
		reader, err := mbp.NewSnapshotReader(path)
		Expect(err).To(BeNil())
		defer reader.Close()

		var snaps []mbp.SnapshotMessage
		for {
			s, err := reader.Next()
			if err != nil {
				break
			}
			snaps = append(snaps, s)
		}

		Expect(snaps).To(HaveLen(3))
		Expect(snaps[0].Bids).To(BeEmpty())
		Expect(snaps[0].Asks).To(BeEmpty())

		Expect(snaps[1].Asks).To(Equal([]mbp.PriceLevel{{Price: 1, Qty: 2}}))
		Expect(snaps[1].Bids).To(BeEmpty())

		Expect(snaps[2].Asks).To(Equal([]mbp.PriceLevel{{Price: 1, Qty: 2}}))
		Expect(snaps[2].Bids).To(Equal([]mbp.PriceLevel{{Price: 7, Qty: -8}}))
	})
})
