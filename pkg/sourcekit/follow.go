package sourcekit

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/logging"
)

const defaultPollInterval = 100 * time.Millisecond

type followConfig struct {
	FromStart    bool
	PollInterval time.Duration
}

type FollowOption func(*followConfig)

// FromStart makes Follow begin with the lines already present in the file,
// instead of only the ones appended after it started.
func FromStart() FollowOption {
	return func(c *followConfig) { c.FromStart = true }
}

// PollInterval sets how often the file is checked for new content when no file system event arrives.
func PollInterval(d time.Duration) FollowOption {
	return func(c *followConfig) {
		if 0 < d {
			c.PollInterval = d
		}
	}
}

// Follow returns a single-use, unbounded cursor over the lines appended to the file at path, similar to "tail -f".
// Next blocks until a complete line is available or ctx is done.
// File changes are picked up through fsnotify, with periodic polling as a fallback.
// A truncated file is followed again from its beginning,
// and when the path is replaced by a new file, the new file is followed from its beginning.
func Follow(ctx context.Context, path string, opts ...FollowOption) (*FollowCursor, error) {
	var c = followConfig{PollInterval: defaultPollInterval}
	for _, opt := range opts {
		opt(&c)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var offset int64
	if !c.FromStart {
		offset, err = file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, errorkit.Merge(err, file.Close())
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	fc := &FollowCursor{
		ctx:    ctx,
		cancel: cancel,
		config: c,
		path:   path,
		base:   filepath.Base(path),
		file:   file,
		reader: bufio.NewReader(file),
		offset: offset,
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Debug(ctx, "fsnotify is unavailable, following file by polling", logging.ErrField(err))
		return fc, nil
	}
	// the directory is watched so replacing the file is noticed as well
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Debug(ctx, "failed to watch directory, following file by polling",
			logging.Field("path", path), logging.ErrField(err))
		_ = watcher.Close()
		return fc, nil
	}
	fc.watcher = watcher
	fc.watchEvents = watcher.Events
	fc.watchErrors = watcher.Errors
	return fc, nil
}

type FollowCursor struct {
	ctx    context.Context
	cancel context.CancelFunc
	config followConfig
	path   string
	base   string

	file    *os.File
	reader  *bufio.Reader
	offset  int64
	pending strings.Builder

	watcher     *fsnotify.Watcher
	watchEvents <-chan fsnotify.Event
	watchErrors <-chan error

	value  string
	err    error
	closed bool
}

func (c *FollowCursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	for {
		chunk, err := c.reader.ReadString('\n')
		c.offset += int64(len(chunk))
		c.pending.WriteString(chunk)
		if err == nil {
			c.value = strings.TrimRight(c.pending.String(), "\r\n")
			c.pending.Reset()
			return true
		}
		if !errors.Is(err, io.EOF) {
			c.err = err
			return false
		}
		if err := c.wait(); err != nil {
			c.err = err
			return false
		}
	}
}

func (c *FollowCursor) wait() error {
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return c.ctx.Err()
		case event, ok := <-c.watchEvents:
			if !ok {
				c.watchEvents = nil
				continue
			}
			if filepath.Base(event.Name) != c.base {
				continue
			}
			return c.refresh()
		case err, ok := <-c.watchErrors:
			if !ok {
				c.watchErrors = nil
				continue
			}
			logger.Debug(c.ctx, "file watcher reported an error", logging.ErrField(err))
		case <-ticker.C:
			return c.refresh()
		}
	}
}

// refresh prepares the cursor to read what changed in the followed path.
func (c *FollowCursor) refresh() error {
	current, err := c.file.Stat()
	if err != nil {
		return err
	}
	latest, err := os.Stat(c.path)
	if err == nil && !os.SameFile(current, latest) {
		return c.reopen()
	}
	if errors.Is(err, os.ErrNotExist) {
		// replacement is not in place yet
		return nil
	}
	if c.offset <= current.Size() {
		return nil
	}
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	c.reset()
	return nil
}

func (c *FollowCursor) reopen() error {
	file, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.file.Close(); err != nil {
		logger.Debug(c.ctx, "failed to close the replaced file",
			logging.Field("path", c.path), logging.ErrField(err))
	}
	c.file = file
	c.reset()
	return nil
}

func (c *FollowCursor) reset() {
	c.offset = 0
	c.pending.Reset()
	c.reader.Reset(c.file)
}

func (c *FollowCursor) Value() string {
	return c.value
}

// Err returns the cause that ended the cursor.
// When the context given to Follow is done, it is the context's error.
func (c *FollowCursor) Err() error {
	return c.err
}

// Close stops following the file, and releases the file and its watcher.
func (c *FollowCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()
	var errs []error
	if c.watcher != nil {
		errs = append(errs, c.watcher.Close())
	}
	errs = append(errs, c.file.Close())
	return errorkit.Merge(errs...)
}
