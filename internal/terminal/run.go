package terminal

import (
	"context"
	"fmt"

	"github.com/nsf/termbox-go"
)

// Run takes over the terminal and drives app until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, app *App) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)

	done := make(chan struct{})
	events, stopped := pollEvents(termbox.PollEvent, done)
	defer func() {
		close(done)
		termbox.Interrupt()
		<-stopped
	}()

	for {
		w, h := termbox.Size()
		if err := app.Draw(w, h).Flush(); err != nil {
			return fmt.Errorf("draw: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if ev.Type == termbox.EventError {
				return fmt.Errorf("terminal event: %w", ev.Err)
			}
			if !app.HandleEvent(ctx, ev) {
				return nil
			}
		}
	}
}

// pollEvents forwards poll results until poll reports EventInterrupt. Once
// done is closed events are dropped rather than forwarded, so the goroutine
// always returns to poll and an Interrupt sent after close(done) is always
// received. stopped is closed when the goroutine exits.
func pollEvents(poll func() termbox.Event, done <-chan struct{}) (<-chan termbox.Event, <-chan struct{}) {
	events := make(chan termbox.Event)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			ev := poll()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case events <- ev:
			case <-done:
			}
		}
	}()
	return events, stopped
}
