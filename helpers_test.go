package snapwait_test

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"testing"
	"time"
)

// recordingTB captures failures instead of failing the real test.
// Fatalf ends the calling goroutine, so bodies run through run().
type recordingTB struct {
	testing.TB
	name string

	mu     sync.Mutex
	failed bool
	fatal  bool
	logs   []string
}

func newRecordingTB(name string) *recordingTB {
	return &recordingTB{name: name}
}

func (r *recordingTB) Helper()      {}
func (r *recordingTB) Name() string { return r.name }

func (r *recordingTB) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func (r *recordingTB) Fatalf(format string, args ...any) {
	r.Errorf(format, args...)
	r.mu.Lock()
	r.fatal = true
	r.mu.Unlock()
	runtime.Goexit()
}

func (r *recordingTB) FailNow() {
	r.mu.Lock()
	r.failed = true
	r.fatal = true
	r.mu.Unlock()
	runtime.Goexit()
}

func (r *recordingTB) Fatal(args ...any) {
	r.Fatalf("%s", fmt.Sprint(args...))
}

func (r *recordingTB) output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := ""
	for _, l := range r.logs {
		out += l + "\n"
	}
	return out
}

// run executes fn on its own goroutine so Fatalf can stop it.
func run(fn func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	<-done
}

// fakeClock advances only when Sleep is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// captures returns a capture function yielding imgs in order, repeating the
// last one, and a counter of calls.
func captures(imgs ...image.Image) (func() (image.Image, error), *int) {
	n := 0
	return func() (image.Image, error) {
		i := min(n, len(imgs)-1)
		n++
		return imgs[i], nil
	}, &n
}
