// Copyright (c) 2024 Neomantra Corp

package hist_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/krakenquant/mbpreplay/hist"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client", func() {
	It("parses a page and its continuation token", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Query().Get("sort")).To(Equal("asc"))
			w.Write([]byte(`{"elements":[{"event":{"type":"OrderPlaced"}}],"continuationToken":"abc"}`))
		}))
		defer srv.Close()

		c := hist.NewClient(srv.URL, "test-key")
		page, err := c.FetchPage(context.Background(), "XXBTZUSD", hist.EventKind_Orders, "2024-01-01T00:00:00Z", "2024-01-01T00:30:00Z", "")
		Expect(err).To(BeNil())
		Expect(page.Elements).To(HaveLen(1))
		Expect(string(page.Elements[0].GetStringBytes("type"))).To(Equal("OrderPlaced"))
		Expect(page.ContinuationToken).To(Equal("abc"))
	})

	It("converts a non-200 response to a TransportError", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail":"nope"}`))
		}))
		defer srv.Close()

		c := hist.NewClient(srv.URL, "test-key")
		_, err := c.FetchPage(context.Background(), "XXBTZUSD", hist.EventKind_Orders, "2024-01-01T00:00:00Z", "2024-01-01T00:30:00Z", "")
		Expect(err).ToNot(BeNil())
	})
})
