// Copyright (c) 2024 Neomantra Corp
//
// HTTP History Adapter (C10): paginated event-page fetcher for the
// orders/executions endpoints. Grounded on hist.go's databentoGetRequest
// and internal/tui/downloads.go's retryablehttp usage (see DESIGN.md).
//

package hist

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/valyala/fastjson"

	mbp "github.com/krakenquant/mbpreplay"
)

// EventKind selects which endpoint a page request targets.
type EventKind string

const (
	EventKind_Orders     EventKind = "orders"
	EventKind_Executions EventKind = "executions"
)

// Client is a stateless fetcher of paginated event pages from the history
// API, per §4.10. One Client is shared by every producer of a day.
type Client struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

// NewClient builds a Client against baseURL, authenticating with apiKey via
// HTTP Basic auth (username=apiKey, blank password), matching the reference
// transport's auth scheme.
func NewClient(baseURL, apiKey string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 5
	rc.Logger = log.New(io.Discard, "", log.LstdFlags)
	return &Client{baseURL: baseURL, apiKey: apiKey, http: rc}
}

// Page is one parsed response page: the event list plus the continuation
// token for the next page (empty once exhausted).
type Page struct {
	Elements          []*fastjson.Value
	ContinuationToken string
}

// FetchPage issues one GET against <baseURL>/market/<feedcode>/<kind> with
// sort=asc, since, before, and (if non-empty) continuationToken. Non-200
// responses are converted to a *mbp.TransportError carrying the body.
func (c *Client) FetchPage(ctx context.Context, feedcode string, kind EventKind, since, before, continuationToken string) (Page, error) {
	apiURL, err := url.Parse(fmt.Sprintf("%s/market/%s/%s", c.baseURL, feedcode, kind))
	if err != nil {
		return Page{}, err
	}
	q := apiURL.Query()
	q.Set("sort", "asc")
	q.Set("since", since)
	q.Set("before", before)
	if continuationToken != "" {
		q.Set("continuation_token", continuationToken)
	}
	apiURL.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", apiURL.String(), nil)
	if err != nil {
		return Page{}, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":"))
	req.Header.Add("Authorization", "Basic "+auth)

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, &mbp.TransportError{URL: apiURL.String(), Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, &mbp.TransportError{StatusCode: resp.StatusCode, URL: apiURL.String(), Body: err.Error()}
	}
	if resp.StatusCode != 200 {
		return Page{}, &mbp.TransportError{StatusCode: resp.StatusCode, Body: string(body), URL: apiURL.String()}
	}

	var p fastjson.Parser
	val, err := p.ParseBytes(body)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %s", mbp.ErrMalformedEvent, err.Error())
	}

	elementsVal := val.Get("elements")
	if elementsVal == nil {
		return Page{}, fmt.Errorf("%w: missing elements array", mbp.ErrMalformedEvent)
	}
	elementsArr, err := elementsVal.Array()
	if err != nil {
		return Page{}, fmt.Errorf("%w: elements is not an array", mbp.ErrMalformedEvent)
	}
	events := make([]*fastjson.Value, 0, len(elementsArr))
	for _, el := range elementsArr {
		events = append(events, el.Get("event"))
	}
	token := string(val.GetStringBytes("continuationToken"))

	return Page{Elements: events, ContinuationToken: token}, nil
}
