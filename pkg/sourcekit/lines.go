package sourcekit

import (
	"bufio"
	"io"
	"iter"

	"go.llib.dev/frameless/pkg/iterkit"
)

// Lines returns a single-use cursor over the lines of r.
// When r is also an io.Closer, Close will close it.
func Lines(r io.Reader) *LineCursor {
	lc := &LineCursor{lines: iterkit.BufioScanner[string](bufio.NewScanner(r), nil)}
	if c, ok := r.(io.Closer); ok {
		lc.closer = c
	}
	return lc
}

type LineCursor struct {
	lines  iter.Seq2[string, error]
	next   func() (string, error, bool)
	stop   func()
	closer io.Closer

	value  string
	err    error
	closed bool
}

func (c *LineCursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	if c.next == nil {
		c.next, c.stop = iter.Pull2(c.lines)
	}
	v, err, ok := c.next()
	if !ok {
		return false
	}
	if err != nil {
		c.err = err
		return false
	}
	c.value = v
	return true
}

func (c *LineCursor) Value() string {
	return c.value
}

func (c *LineCursor) Err() error {
	return c.err
}

// Close releases the cursor, and closes the reader when it is an io.Closer.
// The reader is closed even if the cursor was never advanced.
func (c *LineCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.stop != nil {
		c.stop()
	}
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
