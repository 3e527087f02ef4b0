package snapwait_test

import (
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/cboone/snapwait"
)

func ExampleNew() {
	_ = func(t *testing.T) {
		s := snapwait.New(t,
			snapwait.WithPackage("example.com/app"),
			snapwait.WithTimeout(10*time.Second),
			snapwait.WithTolerance(2),
		)
		s.WaitUntil(func() bool { return true }, "app ready")
	}
}

func ExampleSession_WaitUntilScreenshotMatchesSnapshot() {
	_ = func(t *testing.T, screenshot func() (image.Image, error)) {
		s := snapwait.New(t, snapwait.WithPackage("example.com/app"))
		s.WaitUntilScreenshotMatchesSnapshot(screenshot, "toolbar")
	}
}

func ExampleSession_RunWithTimeout() {
	_ = func(t *testing.T, loaded func() bool) {
		s := snapwait.New(t)
		s.RunWithTimeout(30*time.Second, func() {
			s.WaitUntil(loaded, "large file loaded")
		})
	}
}

func ExampleAssertEqualsRetrying() {
	_ = func(t *testing.T, rows func() int) {
		s := snapwait.New(t)
		snapwait.AssertEqualsRetrying(s, 3, rows, "row count")
	}
}

func ExamplePoll() {
	n := 0
	v, err := snapwait.Poll(func() int {
		n++
		return n
	}, func(v int) bool { return v == 3 }, time.Second)
	fmt.Println(v, err)
	// Output: 3 <nil>
}

func ExampleImageDifference() {
	a := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	b := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	b.Set(1, 1, color.White)

	d, _ := snapwait.ImageDifference(a, b, 0)
	fmt.Println(d.Different, d.Changed)
	// Output: true 1
}
