// Copyright (c) 2024 Neomantra Corp
//
// Updates Builder (C6): per-day fan-out of chunk producers feeding the
// Chunked Event Queue, consumer loop projecting an MBP book into one
// snapshot per distinct second. Grounded on hist.go's request plumbing and
// the reference day-orchestration description (see DESIGN.md).
//

package hist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	mbp "github.com/krakenquant/mbpreplay"
)

// DefaultChunkCount is N in the reference day orchestration: 30-minute
// chunks across a 24-hour day.
const DefaultChunkCount = 48

// DefaultMaxRetryCount bounds the Updates Builder's per-day retry budget.
const DefaultMaxRetryCount = 3

// Builder owns one Client and the per-asset book state carried across
// successive successful days (§4.6's "state is carried forward").
type Builder struct {
	client       *Client
	root         string
	asset        mbp.Asset
	market       mbp.Market
	feedcode     string
	chunkCount   int
	maxRetry     int
	currentBook  *mbp.MBPBook
	lastSaved    *mbp.MBPBook
	lastSavedSec uint64
	log          *slog.Logger
	progressCh   chan<- ChunkProgressMsg
}

// ChunkProgressMsg reports a single (kind, chunk) producer's lifecycle
// transition, for a caller driving a live dashboard (internal/tui).
type ChunkProgressMsg struct {
	Feedcode string
	Chunk    int
	Kind     EventKind
	Done     bool
	Err      error
}

// SetProgressCh wires ch to receive a ChunkProgressMsg on every producer
// completion and failure during subsequent BuildDay calls. Sends are
// non-blocking: a full or nil channel silently drops progress rather than
// stalling the download.
func (b *Builder) SetProgressCh(ch chan<- ChunkProgressMsg) {
	b.progressCh = ch
}

func (b *Builder) reportProgress(msg ChunkProgressMsg) {
	if b.progressCh == nil {
		return
	}
	select {
	case b.progressCh <- msg:
	default:
	}
}

// NewBuilder constructs a Builder for (asset, market), persisting snapshots
// under root. The book starts empty; BuildDay carries it forward across
// calls on the same Builder.
func NewBuilder(client *Client, root string, asset mbp.Asset, market mbp.Market) (*Builder, error) {
	feedcode, err := mbp.AssetToFeedcode(asset, market)
	if err != nil {
		return nil, err
	}
	return &Builder{
		client:     client,
		root:       root,
		asset:      asset,
		market:     market,
		feedcode:   feedcode,
		chunkCount: DefaultChunkCount,
		maxRetry:   DefaultMaxRetryCount,
		log:        slog.Default().With("feedcode", feedcode),
	}, nil
}

// BuildDay downloads one UTC day [since, since+24h) of order/execution
// events, projects per-second snapshots, and writes them to
// <root>/snapshots/<feedcode>/<MM_DD_YYYY>.bin via a temporary file renamed
// over it, replacing any earlier file for that day. On the first call the book
// starts empty at since; subsequent calls carry forward the prior day's book.
func (b *Builder) BuildDay(ctx context.Context, since time.Time) error {
	until := since.AddDate(0, 0, 1)
	path := mbp.DayFilePath(b.root, mbp.Kind_Snapshots, b.feedcode, mbp.YMDFileName(since))
	tmpPath := path + ".tmp"

	if b.lastSaved == nil {
		// First day ever processed: seed lastSaved with a fresh empty book
		// so every attempt below — including the first — has something to
		// restore from on failure, matching download_updates' unconditional
		// _last_saved_mbp_book init in the original.
		b.lastSaved = mbp.NewMBPBook(b.feedcode, b.market)
		b.lastSavedSec = uint64(since.Unix())
	}
	if b.currentBook == nil {
		b.currentBook = mbp.NewMBPBook(b.feedcode, b.market)
	}

	var attempts []string
	for attempt := 1; attempt <= b.maxRetry; attempt++ {
		b.currentBook.RestoreFrom(b.lastSaved)
		curSecond := b.lastSavedSec

		if err := os.MkdirAll(mbp.FeedcodeDir(b.root, mbp.Kind_Snapshots, b.feedcode), 0o755); err != nil {
			return err
		}
		_ = os.Remove(tmpPath)

		count, finalSecond, err := b.runAttempt(ctx, tmpPath, since, until, curSecond)
		if err == nil {
			if err := os.Rename(tmpPath, path); err != nil {
				return err
			}
			b.lastSaved = b.currentBook.Clone()
			b.lastSavedSec = finalSecond
			b.log.Info("day built",
				"date", since.Format("2006-01-02"),
				"snapshots", humanize.Comma(int64(count)),
				"attempt", attempt)
			return nil
		}

		attempts = append(attempts, err.Error())
		_ = os.Remove(tmpPath)
		b.log.Warn("day attempt failed", "date", since.Format("2006-01-02"), "attempt", attempt, "err", err)
	}

	return &mbp.DayDownloadError{
		Feedcode: b.feedcode,
		Date:     since.Format("2006-01-02"),
		Attempts: attempts,
	}
}

// runAttempt runs one fetch-and-project attempt, writing snapshots to
// tmpPath. It mutates b.currentBook in place; callers are responsible for
// restoring it before a retry.
func (b *Builder) runAttempt(ctx context.Context, tmpPath string, since, until time.Time, startSecond uint64) (int, uint64, error) {
	queue := mbp.NewChunkedEventQueue(b.chunkCount)
	chunkSpan := until.Sub(since) / time.Duration(b.chunkCount)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for chunk := 0; chunk < b.chunkCount; chunk++ {
		chunkSince := since.Add(time.Duration(chunk) * chunkSpan)
		chunkBefore := chunkSince.Add(chunkSpan)

		wg.Add(2)
		go b.runProducer(ctx, queue, EventKind_Orders, mbp.EventType_Order, chunk, b.feedcode, chunkSince, chunkBefore, &wg)
		go b.runProducer(ctx, queue, EventKind_Executions, mbp.EventType_Execution, chunk, b.feedcode, chunkSince, chunkBefore, &wg)
	}

	writer, err := mbp.NewSnapshotWriter(tmpPath)
	if err != nil {
		cancel()
		wg.Wait()
		return 0, startSecond, err
	}
	defer writer.Close()

	count := 0
	curSecond := startSecond
	for {
		delta, ok := queue.Peek()
		if !ok {
			break
		}
		if delta.Timestamp != curSecond {
			if err := writer.Write(b.currentBook.Project(curSecond)); err != nil {
				cancel()
				wg.Wait()
				return count, curSecond, err
			}
			count++
			curSecond = delta.Timestamp
			continue
		}
		delta, ok = queue.Get()
		if !ok {
			break
		}
		b.currentBook.ApplyDelta(delta)
		curSecond = delta.Timestamp
	}
	wg.Wait()

	if queue.Failed() {
		return count, curSecond, fmt.Errorf("%w: producer failure for %s", mbp.ErrDayDownloadFailed, b.feedcode)
	}

	if err := writer.Write(b.currentBook.Project(curSecond)); err != nil {
		return count, curSecond, err
	}
	count++
	return count, curSecond, nil
}

// runProducer fetches one (type, chunk) page stream and feeds mapped deltas
// into the queue, following continuationToken pagination until exhausted.
// Any error latches the queue failed via MarkFailed and returns without
// calling MarkDone (§4.6 step 2).
func (b *Builder) runProducer(ctx context.Context, queue *mbp.ChunkedEventQueue, kind EventKind, eventType mbp.EventType, chunk int, feedcode string, since, before time.Time, wg *sync.WaitGroup) {
	defer wg.Done()

	sinceStr := since.UTC().Format(time.RFC3339)
	beforeStr := before.UTC().Format(time.RFC3339)
	token := ""

	for {
		if queue.Failed() {
			return
		}
		page, err := b.client.FetchPage(ctx, feedcode, kind, sinceStr, beforeStr, token)
		if err != nil {
			b.log.Error("producer fetch failed", "kind", kind, "chunk", chunk, "err", err)
			queue.MarkFailed()
			b.reportProgress(ChunkProgressMsg{Feedcode: feedcode, Chunk: chunk, Kind: kind, Err: err})
			return
		}

		deltas := make([]mbp.UpdateDelta, 0, len(page.Elements))
		for _, ev := range page.Elements {
			ds, err := mbp.DeltaFromEvent(ev)
			if err != nil {
				b.log.Error("event mapping failed", "kind", kind, "chunk", chunk, "err", err)
				queue.MarkFailed()
				b.reportProgress(ChunkProgressMsg{Feedcode: feedcode, Chunk: chunk, Kind: kind, Err: err})
				return
			}
			deltas = append(deltas, ds...)
		}
		deltas = mbp.CoalesceDeltas(deltas)
		if len(deltas) > 0 {
			if err := queue.Put(deltas, eventType, chunk); err != nil {
				b.log.Error("queue put failed", "kind", kind, "chunk", chunk, "err", err)
				queue.MarkFailed()
				b.reportProgress(ChunkProgressMsg{Feedcode: feedcode, Chunk: chunk, Kind: kind, Err: err})
				return
			}
		}

		if page.ContinuationToken == "" {
			break
		}
		token = page.ContinuationToken
	}

	if err := queue.MarkDone(eventType, chunk); err != nil {
		b.log.Error("mark done failed", "kind", kind, "chunk", chunk, "err", err)
		queue.MarkFailed()
		b.reportProgress(ChunkProgressMsg{Feedcode: feedcode, Chunk: chunk, Kind: kind, Err: err})
		return
	}
	b.reportProgress(ChunkProgressMsg{Feedcode: feedcode, Chunk: chunk, Kind: kind, Done: true})
}
