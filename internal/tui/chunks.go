// Copyright (c) 2025 Neomantra Corp
//
// Live per-chunk ORDER/EXECUTION drain-status dashboard for a running
// BuildDay call. Grounded on dbn-go's DownloadsPageModel (table +
// progress channel), re-targeted at hist.ChunkProgressMsg instead of a
// file-download byte counter: there is nothing to show a percentage of
// here, only per-(chunk, kind) pending/done/failed transitions.
//

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/krakenquant/mbpreplay/hist"
)

type chunkState string

const (
	chunkPending chunkState = "pending"
	chunkDone    chunkState = "done"
	chunkFailed  chunkState = "failed"
)

// ChunkProgressMsg wraps hist.ChunkProgressMsg as a tea.Msg.
type ChunkProgressMsg hist.ChunkProgressMsg

const (
	ordersColumn     = 1
	executionsColumn = 2
)

// ChunksPageModel renders one row per chunk with its ORDER/EXECUTION state.
type ChunksPageModel struct {
	feedcode string
	date     string

	orderState [][]chunkState // [chunk][0=orders, 1=executions] -> state
	progressCh chan ChunkProgressMsg

	chunksTable table.Model
	lastError   error
	help        help.Model
}

// NewChunksPage builds a dashboard for feedcode/date over n chunks, fed by
// progressCh (sized by the caller; the destination PumpProgress relays the
// Builder's SetProgressCh channel into).
func NewChunksPage(feedcode, date string, n int, progressCh chan ChunkProgressMsg) ChunksPageModel {
	rows := make([]table.Row, n)
	orderState := make([][]chunkState, n)
	for i := 0; i < n; i++ {
		orderState[i] = []chunkState{chunkPending, chunkPending}
		rows[i] = table.Row{fmt.Sprintf("%d", i), string(chunkPending), string(chunkPending)}
	}

	t := table.New(table.WithColumns([]table.Column{
		{Title: "Chunk", Width: 8},
		{Title: "Orders", Width: 10},
		{Title: "Executions", Width: 12},
	}), table.WithRows(rows), table.WithStyles(nimbleTableStyles), table.WithFocused(true))

	return ChunksPageModel{
		feedcode:    feedcode,
		date:        date,
		orderState:  orderState,
		progressCh:  progressCh,
		chunksTable: t,
		help:        help.New(),
	}
}

func (m ChunksPageModel) Init() tea.Cmd {
	return m.listenForProgress()
}

func (m ChunksPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.chunksTable.SetWidth(msg.Width - 2)
		m.chunksTable.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.chunksTable, cmd = m.chunksTable.Update(msg)
		return m, cmd

	case ChunkProgressMsg:
		m.onProgress(msg)
		return m, m.listenForProgress()
	}
	return m, nil
}

func (m ChunksPageModel) View() string {
	viewStr := nimbleBorderStyle.Render(m.chunksTable.View()) + "\n"
	viewStr += fmt.Sprintf("%s %s\n", m.feedcode, m.date)
	if m.lastError != nil {
		viewStr += fmt.Sprintf("Error: %s ", m.lastError)
	}
	viewStr += m.help.View(&m)
	return viewStr
}

// FullHelp implements help.KeyMap; the table's own bindings (arrow keys)
// carry the page, so there's nothing domain-specific to add.
func (m *ChunksPageModel) FullHelp() [][]key.Binding { return nil }

// ShortHelp implements help.KeyMap.
func (m *ChunksPageModel) ShortHelp() []key.Binding { return nil }

func (m *ChunksPageModel) listenForProgress() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressCh
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *ChunksPageModel) onProgress(msg ChunkProgressMsg) {
	if msg.Chunk < 0 || msg.Chunk >= len(m.orderState) {
		return
	}
	col := 0
	if msg.Kind == hist.EventKind_Executions {
		col = 1
	}
	state := chunkDone
	if msg.Err != nil {
		state = chunkFailed
		m.lastError = msg.Err
	}
	m.orderState[msg.Chunk][col] = state

	rows := m.chunksTable.Rows()
	if msg.Chunk < len(rows) {
		rows[msg.Chunk][ordersColumn] = string(m.orderState[msg.Chunk][0])
		rows[msg.Chunk][executionsColumn] = string(m.orderState[msg.Chunk][1])
		m.chunksTable.SetRows(rows)
	}
}
