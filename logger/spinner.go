package logger

import (
	"fmt"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type Spinner struct {
	Message string
	Console *Console
	done    chan struct{}
}

func (s *Spinner) start() {
	go func() {
		ticker := time.NewTicker(90 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-s.done:
				fmt.Print("\r\033[K")
				return
			case <-ticker.C:
				fmt.Printf("\r%s %s ", spinnerFrames[i%len(spinnerFrames)], s.Message)
				i++
			}
		}
	}()
}

// Stop ends the spinner and reports the outcome on the console.
func (s *Spinner) Stop(success bool, message string) {
	close(s.done)
	if success {
		s.Console.Success("%s", message)
	} else {
		s.Console.Error("%s", message)
	}
}
