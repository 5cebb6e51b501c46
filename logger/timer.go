package logger

import "time"

type Timer struct {
	StartTime time.Time
	Name      string
	Console   *Console
}

// End reports elapsed time on the console and returns it.
func (t *Timer) End() time.Duration {
	elapsed := time.Since(t.StartTime)
	t.Console.Info("%s took %v", t.Name, elapsed.Round(time.Millisecond))
	return elapsed
}
