// Package term draws simulation snapshots on a terminal with tcell and
// turns quit keys into a stop signal.
package term

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
)

// Glyphs used for the grid.
const (
	glyphClean    = '.'
	glyphDirty    = '%'
	glyphObstacle = '#'
	glyphHome     = 'H'
	glyphCrowd    = '@' // robot IDs past 9, or more than one robot per cell
)

var (
	styleClean    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDirty    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorGray)
	styleHome     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

var stateStyles = map[core.RobotState]tcell.Style{
	core.Working:    tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true),
	core.Returning:  tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true),
	core.Recharging: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	core.Idle:       tcell.StyleDefault.Foreground(tcell.ColorTeal),
}

// Display renders snapshots to a tcell screen. It implements sim.Observer.
type Display struct {
	mu     sync.Mutex
	screen tcell.Screen
	title  string
	last   *sim.Snapshot
}

// New initialises screen and wraps it.
func New(screen tcell.Screen, title string) (*Display, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	screen.Clear()
	return &Display{screen: screen, title: title}, nil
}

// Close restores the terminal.
func (d *Display) Close() {
	d.screen.Fini()
}

// OnTick draws s and flushes it to the terminal.
func (d *Display) OnTick(s sim.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = &s
	d.draw(s)
	d.screen.Show()
}

func (d *Display) redraw() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screen.Clear()
	if d.last != nil {
		d.draw(*d.last)
	}
	d.screen.Sync()
}

func (d *Display) draw(s sim.Snapshot) {
	scr := d.screen
	for row := 0; row < s.Rows; row++ {
		for col := 0; col < s.Cols; col++ {
			ch, st := glyphClean, styleClean
			switch s.Cell(row, col) {
			case core.Dirty:
				ch, st = glyphDirty, styleDirty
			case core.Obstacle:
				ch, st = glyphObstacle, styleObstacle
			}
			if core.Pos(row, col) == s.Home {
				ch, st = glyphHome, styleHome
			}
			scr.SetContent(col, row, ch, nil, st)
		}
	}

	occupied := make(map[core.Position]int, len(s.Robots))
	for _, r := range s.Robots {
		occupied[r.Pos]++
	}
	for _, r := range s.Robots {
		ch := glyphCrowd
		if r.ID < 10 && occupied[r.Pos] == 1 {
			ch = rune('0' + r.ID)
		}
		scr.SetContent(r.Pos.Col, r.Pos.Row, ch, nil, stateStyles[r.State])
	}

	d.drawStatus(s)
}

// drawStatus writes one line under the grid: tick, dirty count, and each
// robot's battery and state.
func (d *Display) drawStatus(s sim.Snapshot) {
	width, _ := d.screen.Size()
	line := statusLine(d.title, s)
	for x := 0; x < width; x++ {
		ch := ' '
		if x < len(line) {
			ch = rune(line[x])
		}
		d.screen.SetContent(x, s.Rows, ch, nil, styleStatus)
	}
}

func statusLine(title string, s sim.Snapshot) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteString("  ")
	}
	fmt.Fprintf(&b, "tick %d  dirty %d", s.Tick, s.Dirty)
	for _, r := range s.Robots {
		pct := r.Battery
		if s.Capacity > 0 {
			pct = r.Battery * 100 / s.Capacity
		}
		fmt.Fprintf(&b, "  %d:%d%%%c", r.ID, pct, stateLetter(r))
	}
	return b.String()
}

func stateLetter(r sim.RobotView) rune {
	if r.Stalled {
		return '!'
	}
	return [...]rune{'W', 'R', 'C', 'I'}[r.State]
}

// WatchQuit reads terminal events until the user quits (Esc, q, Ctrl-C)
// or ctx ends. Quitting calls cancel. Resizes repaint the last snapshot.
func (d *Display) WatchQuit(ctx context.Context, cancel context.CancelFunc) {
	go func() {
		<-ctx.Done()
		// Wake PollEvent so the loop below can return.
		d.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for {
		ev := d.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if isQuit(ev) {
				cancel()
				return
			}
		case *tcell.EventResize:
			d.redraw()
		}
	}
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
