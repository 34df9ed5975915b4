// Package tray - tray.go
//
// This file implements the system tray UI that shows the running bot and
// lets the user pause, stop or quit it.
// Uses getlantern/systray library for cross-platform tray menu support.
//
// Menu Structure:
//
//	scape-bot
//	├─ Status: running | Fish Fryer (read-only)
//	├─ Progress: 42% (read-only)
//	├─ Last log line (read-only)
//	├─ Pause / Resume
//	├─ Stop
//	└─ Quit (graceful shutdown)
//
// The App is also a progress.Sink, so the session writes its log lines and
// progress straight into the menu. Updates that arrive before the tray is
// ready are kept and applied in onReady.
//
// Lifecycle:
//  1. New: Create instance with the session controls
//  2. Run: Start systray (blocking call, must own the main goroutine)
//  3. onReady: Initialize menu structure
//  4. handleEvents: Listen for user interactions until quit
//  5. onExit: Stop the session and run the quit callback
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"scape-bot/internal/observability"
	"scape-bot/internal/progress"
	"scape-bot/internal/session"
)

const maxLineLen = 60

// Controller is the part of a session the tray drives.
type Controller interface {
	Pause()
	Resume()
	Stop()
	Status() session.Status
}

// App manages the system tray application.
type App struct {
	bot    string
	ctrl   Controller
	onQuit func()

	mu       sync.Mutex
	ready    bool
	status   session.Status
	fraction float64
	line     string

	statusItem   *systray.MenuItem
	progressItem *systray.MenuItem
	lineItem     *systray.MenuItem
	pauseItem    *systray.MenuItem
	stopItem     *systray.MenuItem
	quitItem     *systray.MenuItem
}

var _ progress.Sink = (*App)(nil)

// New creates a tray for the named bot. onQuit runs once when the tray exits.
func New(bot string, ctrl Controller, onQuit func()) *App {
	return &App{bot: bot, ctrl: ctrl, onQuit: onQuit, status: session.Stopped}
}

// Run starts the tray application. It blocks until Quit.
func (a *App) Run() {
	observability.LogInfo("Starting system tray application")
	systray.Run(a.onReady, a.onExit)
	observability.LogInfo("System tray Run() returned")
}

// Quit closes the tray.
func (a *App) Quit() {
	systray.Quit()
}

func (a *App) onReady() {
	systray.SetTitle("scape-bot")
	systray.SetTooltip(fmt.Sprintf("scape-bot: %s", a.bot))

	a.mu.Lock()
	a.statusItem = systray.AddMenuItem("", "Current bot status")
	a.statusItem.Disable()
	a.progressItem = systray.AddMenuItem("", "Run progress")
	a.progressItem.Disable()
	a.lineItem = systray.AddMenuItem("", "Last log line")
	a.lineItem.Disable()

	systray.AddSeparator()

	a.pauseItem = systray.AddMenuItem("Pause", "Pause or resume the bot")
	a.stopItem = systray.AddMenuItem("Stop", "Stop the bot")

	systray.AddSeparator()

	a.quitItem = systray.AddMenuItem("Quit", "Quit the application")
	a.ready = true
	a.refreshLocked()
	a.mu.Unlock()

	observability.SafeGo(a.handleEvents)
}

func (a *App) onExit() {
	observability.LogInfo("System tray onExit callback triggered")
	if a.ctrl != nil {
		a.ctrl.Stop()
	}
	if a.onQuit != nil {
		a.onQuit()
	}
	observability.LogInfo("System tray exit complete")
}

// handleEvents handles tray menu events
func (a *App) handleEvents() {
	for {
		select {
		case <-a.pauseItem.ClickedCh:
			a.togglePause()
		case <-a.stopItem.ClickedCh:
			observability.LogInfo("Stop requested from tray")
			a.ctrl.Stop()
			a.stopItem.Disable()
			a.pauseItem.Disable()
		case <-a.quitItem.ClickedCh:
			observability.LogInfo("Quit requested by user")
			systray.Quit()
			return
		}
	}
}

func (a *App) togglePause() {
	if a.ctrl.Status() == session.Paused {
		a.ctrl.Resume()
		return
	}
	a.ctrl.Pause()
}

// SetStatus shows st. It is meant for session.WithStatusHook.
func (a *App) SetStatus(st session.Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = st
	a.refreshLocked()
}

// Log shows msg as the last log line.
func (a *App) Log(msg string, _ bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.line = msg
	a.refreshLocked()
}

// Progress shows the run fraction.
func (a *App) Progress(fraction float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fraction = fraction
	a.refreshLocked()
}

func (a *App) refreshLocked() {
	if !a.ready {
		return
	}
	a.statusItem.SetTitle(statusTitle(a.status, a.bot))
	a.progressItem.SetTitle(progressTitle(a.fraction))
	a.lineItem.SetTitle(truncate(a.line, maxLineLen))
	a.pauseItem.SetTitle(pauseTitle(a.status))
	switch a.status {
	case session.Running, session.Paused:
		a.pauseItem.Enable()
		a.stopItem.Enable()
	default:
		a.pauseItem.Disable()
		a.stopItem.Disable()
	}
}

func statusTitle(st session.Status, bot string) string {
	return fmt.Sprintf("Status: %s | %s", st, bot)
}

func progressTitle(fraction float64) string {
	return fmt.Sprintf("Progress: %d%%", int(fraction*100+0.5))
}

func pauseTitle(st session.Status) string {
	if st == session.Paused {
		return "Resume"
	}
	return "Pause"
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
