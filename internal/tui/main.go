// Copyright (c) 2025 Neomantra Corp

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/krakenquant/mbpreplay/hist"
)

// Config carries what the dashboard needs to know about the day it is
// watching; the actual BuildDay call runs in the caller's goroutine and
// feeds ChunkProgressMsg into ProgressCh.
type Config struct {
	Feedcode   string
	Date       string
	ChunkCount int
	ProgressCh chan ChunkProgressMsg
}

// Run launches the single-page chunk dashboard and blocks until the user
// quits (ctrl+c / esc).
func Run(config Config) error {
	model := NewAppModel(config)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// PumpProgress relays ChunkProgressMsg values from a hist.Builder's
// progress channel into the dashboard's channel, converting the type as it
// goes. Run this in its own goroutine, fed by a channel passed to
// (*hist.Builder).SetProgressCh.
func PumpProgress(src <-chan hist.ChunkProgressMsg, dst chan ChunkProgressMsg) {
	for msg := range src {
		dst <- ChunkProgressMsg(msg)
	}
	close(dst)
}

//////////////////////////////////////////////////////////////////////////////

type AppModel struct {
	config Config
	page   ChunksPageModel

	width  int
	height int
}

func NewAppModel(config Config) AppModel {
	return AppModel{
		config: config,
		page:   NewChunksPage(config.Feedcode, config.Date, config.ChunkCount, config.ProgressCh),
		width:  20,
		height: 10,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.page.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			return m, tea.Quit
		}
	}

	pageModel, cmd := m.page.Update(msg)
	m.page = pageModel.(ChunksPageModel)
	return m, cmd
}

func (m AppModel) View() string {
	return m.page.View()
}
