package sourcekit_test

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/gilacc/finitegen/pkg/sourcekit"
	"go.llib.dev/frameless/pkg/iterkit"
	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"
)

func ExampleCounter() {
	for n := range sourcekit.Counter(0) {
		if 3 <= n {
			break
		}
		fmt.Println(n)
	}
	// Output:
	// 0
	// 1
	// 2
}

func TestCounter(t *testing.T) {
	s := testcase.NewSpec(t)

	start := testcase.Let(s, func(t *testcase.T) int {
		return t.Random.IntBetween(-100, 100)
	})

	s.Test("it yields ascending integers from the start value", func(t *testcase.T) {
		n := t.Random.IntBetween(1, 100)
		got := slices.Collect(iterkit.Head(sourcekit.Counter(start.Get(t)), n))
		assert.Equal(t, n, len(got))
		for i, v := range got {
			assert.Equal(t, start.Get(t)+i, v)
		}
	})

	s.Test("it can be iterated again from the start", func(t *testcase.T) {
		seq := sourcekit.Counter(start.Get(t))
		first := slices.Collect(iterkit.Head(seq, 5))
		second := slices.Collect(iterkit.Head(seq, 5))
		assert.Equal(t, first, second)
	})
}

func TestIterate(t *testing.T) {
	got := slices.Collect(iterkit.Head(sourcekit.Iterate(1, func(n int) int { return n * 2 }), 5))
	assert.Equal(t, []int{1, 2, 4, 8, 16}, got)
}

func TestGenerate(t *testing.T) {
	var calls int
	seq := sourcekit.Generate(func() string {
		calls++
		return "x"
	})
	got := slices.Collect(iterkit.Head(seq, 3))
	assert.Equal(t, []string{"x", "x", "x"}, got)
	assert.Equal(t, 3, calls, "supplier is called only for the consumed elements")
}

func TestCycle(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test("it repeats the values", func(t *testcase.T) {
		got := slices.Collect(iterkit.Head(sourcekit.Cycle("a", "b"), 5))
		assert.Equal(t, []string{"a", "b", "a", "b", "a"}, got)
	})

	s.Test("without values it yields nothing", func(t *testcase.T) {
		assert.Empty(t, slices.Collect(sourcekit.Cycle[int]()))
	})
}

type closeRecorder struct {
	io.Reader
	closed int
}

func (cr *closeRecorder) Close() error {
	cr.closed++
	return nil
}

type brokenReader struct{ err error }

func (r brokenReader) Read([]byte) (int, error) { return 0, r.err }

func TestLines(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test("it yields the lines of the reader", func(t *testcase.T) {
		c := sourcekit.Lines(strings.NewReader("foo\nbar\r\nbaz"))
		var got []string
		for c.Next() {
			got = append(got, c.Value())
		}
		assert.NoError(t, c.Err())
		assert.Equal(t, []string{"foo", "bar", "baz"}, got)
	})

	s.Test("reader failure is reported through Err", func(t *testcase.T) {
		expErr := errors.New(t.Random.String())
		c := sourcekit.Lines(brokenReader{err: expErr})
		assert.False(t, c.Next())
		assert.ErrorIs(t, expErr, c.Err())
	})

	s.Test("Close closes the reader only once", func(t *testcase.T) {
		r := &closeRecorder{Reader: strings.NewReader("foo\nbar")}
		c := sourcekit.Lines(r)
		assert.True(t, c.Next())
		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
		assert.Equal(t, 1, r.closed)
		assert.False(t, c.Next(), "closed cursor yields no more lines")
	})

	s.Test("Close closes the reader of a cursor that was never advanced", func(t *testcase.T) {
		r := &closeRecorder{Reader: strings.NewReader("foo")}
		c := sourcekit.Lines(r)
		assert.NoError(t, c.Close())
		assert.Equal(t, 1, r.closed)
	})

	s.Test("after a reader failure no more lines are yielded", func(t *testcase.T) {
		expErr := errors.New(t.Random.String())
		c := sourcekit.Lines(io.MultiReader(strings.NewReader("foo\n"), brokenReader{err: expErr}))
		assert.True(t, c.Next())
		assert.Equal(t, "foo", c.Value())
		assert.False(t, c.Next())
		assert.False(t, c.Next())
		assert.ErrorIs(t, expErr, c.Err())
		assert.NoError(t, c.Close())
	})
}
