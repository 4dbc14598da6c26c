package ui

import (
	"io"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

const maxTitleWidth = 32

// ChapterProgress is a progress bar for the chapter loop. A quiet progress
// accepts every call and draws nothing.
type ChapterProgress struct {
	p   *mpb.Progress
	bar *mpb.Bar

	mu    sync.Mutex
	title string
	total int
}

func NewChapterProgress(out io.Writer, prefix string, quiet bool) *ChapterProgress {
	if quiet || out == nil {
		return &ChapterProgress{}
	}

	h := &ChapterProgress{}
	h.p = mpb.New(
		mpb.WithWidth(40),
		mpb.WithOutput(out),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	h.bar = h.p.New(
		0,
		mpb.BarStyle().Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(prefix+"  "),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d chapters", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				h.mu.Lock()
				defer h.mu.Unlock()
				return " | " + truncate(h.title, maxTitleWidth)
			}),
		),
	)
	return h
}

// SetTotal sets the number of chapters once it is known.
func (h *ChapterProgress) SetTotal(total int) {
	h.mu.Lock()
	h.total = total
	h.mu.Unlock()
	if h.bar != nil {
		h.bar.SetTotal(int64(total), false)
	}
}

// Update matches the loader's chapter callback.
func (h *ChapterProgress) Update(done, total int, title string) {
	h.mu.Lock()
	h.title = title
	h.total = total
	h.mu.Unlock()
	if h.bar == nil {
		return
	}
	h.bar.SetTotal(int64(total), false)
	h.bar.SetCurrent(int64(done))
}

// Done marks the bar complete.
func (h *ChapterProgress) Done() {
	if h.bar == nil {
		return
	}
	h.mu.Lock()
	total := h.total
	h.mu.Unlock()
	h.bar.SetCurrent(int64(total))
	h.bar.SetTotal(int64(total), true)
}

// Close stops the bar and waits for the last render. It is safe to call
// after a failed run.
func (h *ChapterProgress) Close() {
	if h.p == nil {
		return
	}
	if !h.bar.Completed() {
		h.bar.Abort(false)
	}
	h.p.Wait()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
