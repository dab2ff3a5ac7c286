package tui

import (
	"github.com/hsbacot/livesearch/client"
	"github.com/hsbacot/livesearch/resolver"
)

// Message types for Bubble Tea state transitions

type stateMsg struct {
	state resolver.State[client.Library]
}

type fetchCompleteMsg struct {
	library client.Library
	content string
	err     error
}
