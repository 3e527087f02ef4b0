package poll

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when Sleep is called.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func counter() (func() (int, error), *int) {
	n := 0
	return func() (int, error) {
		n++
		return n, nil
	}, &n
}

func TestUntilMatchesFirstResult(t *testing.T) {
	clk := newFakeClock()
	p := &Poller{Interval: 10 * time.Millisecond, Clock: clk}
	q, calls := counter()

	v, err := Until(p, q, func(int) bool { return true }, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, clk.sleeps)
}

func TestUntilMatchesAfterRetries(t *testing.T) {
	clk := newFakeClock()
	p := &Poller{Interval: 10 * time.Millisecond, Clock: clk}
	q, calls := counter()

	v, err := Until(p, q, func(n int) bool { return n == 4 }, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, 4, *calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond}, clk.sleeps)
}

func TestUntilTimeout(t *testing.T) {
	clk := newFakeClock()
	p := &Poller{Interval: 10 * time.Millisecond, Clock: clk}
	q, calls := counter()

	v, err := Until(p, q, func(int) bool { return false }, 35*time.Millisecond)
	require.Error(t, err)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 35*time.Millisecond, te.Timeout)
	assert.GreaterOrEqual(t, te.Elapsed, te.Timeout)
	assert.Equal(t, *calls, te.Attempts)
	assert.Equal(t, v, te.Last)
	assert.NotEmpty(t, te.Stack)
	assert.Contains(t, err.Error(), "timed out after 35ms")
	// The last sleep is cut short to the remaining budget.
	assert.Equal(t, 5*time.Millisecond, clk.sleeps[len(clk.sleeps)-1])
}

func TestUntilZeroTimeoutQueriesOnce(t *testing.T) {
	clk := newFakeClock()
	p := &Poller{Interval: 10 * time.Millisecond, Clock: clk}

	q, calls := counter()
	_, err := Until(p, q, func(int) bool { return false }, 0)
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, clk.sleeps)

	q, calls = counter()
	v, err := Until(p, q, func(n int) bool { return n == 1 }, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, *calls)
}

func TestUntilQueryError(t *testing.T) {
	p := &Poller{Clock: newFakeClock()}
	boom := errors.New("boom")
	n := 0
	_, err := Until(p, func() (int, error) {
		n++
		if n == 2 {
			return 0, boom
		}
		return n, nil
	}, func(int) bool { return false }, time.Second)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "attempt 2")
	var te *TimeoutError
	assert.False(t, errors.As(err, &te))
}

func TestUntilNoFail(t *testing.T) {
	clk := newFakeClock()
	p := &Poller{Interval: 10 * time.Millisecond, Clock: clk}
	q, calls := counter()

	v, err := UntilNoFail(p, q, func(int) bool { return false }, 25*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, *calls, v)
	assert.Greater(t, v, 1)
}

func TestIntervalDefaultsAndClamp(t *testing.T) {
	assert.Equal(t, DefaultInterval, (&Poller{}).interval())
	assert.Equal(t, MinInterval, (&Poller{Interval: time.Microsecond}).interval())
	assert.Equal(t, 20*time.Millisecond, New(20*time.Millisecond).interval())
}

func TestUntilShortTimeoutOnRealClock(t *testing.T) {
	p := New(time.Second)
	start := time.Now()
	_, err := Until(p, Infallible(func() bool { return false }), func(b bool) bool { return b }, time.Millisecond)
	elapsed := time.Since(start)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.GreaterOrEqual(t, te.Elapsed, time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond, "poll slept a full interval past a 1ms deadline")
}

func TestTimeoutError_DescribesLastValue(t *testing.T) {
	err := &TimeoutError{Timeout: time.Second, Attempts: 3, Last: "waiting"}
	assert.Equal(t, `timed out after 1s (3 attempts); last value: "waiting"`, err.Error())
}

func TestTimeoutError_DescribesImageBySize(t *testing.T) {
	screen := image.NewNRGBA(image.Rect(0, 0, 1920, 1080))
	for i := range screen.Pix {
		screen.Pix[i] = 0xff
	}

	p := &Poller{Interval: 10 * time.Millisecond, Clock: newFakeClock()}
	_, err := Until(p, func() (image.Image, error) { return screen, nil }, func(image.Image) bool { return false }, 0)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "timed out after 0s (1 attempts); last value: 1920x1080 image", err.Error())

	var missing *image.NRGBA
	te.Last = missing
	assert.Contains(t, te.Error(), "last value: (no image captured)")
}

func TestTimeoutError_TruncatesLongValues(t *testing.T) {
	last := make([]color.NRGBA, 10000)
	err := &TimeoutError{Timeout: time.Second, Attempts: 1, Last: last}

	msg := err.Error()
	assert.Less(t, len(msg), 400)
	assert.True(t, strings.HasSuffix(msg, " bytes total)"), msg)

	long := strings.Repeat("x", 1000)
	err.Last = long
	assert.Contains(t, err.Error(), "(1002 bytes total)")
}
