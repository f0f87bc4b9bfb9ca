package chat

import (
	// Go Internal Packages
	"bufio"
	"io"
)

// Line is one line of input, or the error that ended reading.
type Line struct {
	Text string
	Err  error
}

// ReadLines scans r on its own goroutine so that callers can stop waiting for
// input at any time. The channel is closed at end of input, after a read
// error (delivered as the last Line) or once done is closed.
func ReadLines(r io.Reader, maxLineBytes int, done <-chan struct{}) <-chan Line {
	out := make(chan Line)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		if maxLineBytes > 0 {
			scanner.Buffer(make([]byte, 0, min(4096, maxLineBytes)), maxLineBytes)
		}
		for scanner.Scan() {
			select {
			case out <- Line{Text: scanner.Text()}:
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case out <- Line{Err: err}:
			case <-done:
			}
		}
	}()
	return out
}
