package main

import (
	"io"
	"path/filepath"
	"time"

	"gopkg.in/cheggaaa/pb.v1"
)

// barTracker draws one progress bar per rendered file
type barTracker struct {
	out   io.Writer
	bar   *pb.ProgressBar
	total time.Duration
}

func newBarTracker(out io.Writer) *barTracker {
	return &barTracker{out: out}
}

func (b *barTracker) Begin(input string, total time.Duration) {
	bar := pb.New64(int64(total)).SetUnits(pb.U_DURATION)
	bar.Output = b.out
	bar.ShowSpeed = false
	bar.ShowTimeLeft = true
	bar.SetMaxWidth(100)
	bar.Prefix(filepath.Base(input) + " ")
	bar.Start()

	b.bar = bar
	b.total = total
}

func (b *barTracker) Update(elapsed time.Duration) {
	if b.bar == nil {
		return
	}
	if elapsed > b.total {
		elapsed = b.total
	}
	b.bar.Set64(int64(elapsed))
}

func (b *barTracker) End(err error) {
	if b.bar == nil {
		return
	}
	if err == nil {
		b.bar.Set64(int64(b.total))
	}
	b.bar.Finish()
	b.bar = nil
}
