package motion

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg is delivered once per display frame to the model that requested
// it. Owner lets a model drop frames addressed to an earlier instance.
type FrameMsg struct {
	Owner uint64
	Time  time.Time
}

// FrameCmd requests the next frame for owner at fps frames per second. The
// tick fires on bubbletea's timer goroutine; the FrameMsg is handled on the
// UI loop, which is where every clock update and callback runs.
func FrameCmd(owner uint64, fps int) tea.Cmd {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return FrameMsg{Owner: owner, Time: t}
	})
}
