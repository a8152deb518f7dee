package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressReporter shows a bar while several files are extracted. Single
// files and quiet runs report nothing.
type progressReporter struct {
	w         io.Writer
	quiet     bool
	bar       *progressbar.ProgressBar
	startTime time.Time
	failed    int
	done      int
}

func newProgressReporter(w io.Writer, quiet bool) *progressReporter {
	return &progressReporter{w: w, quiet: quiet, startTime: time.Now()}
}

func (p *progressReporter) OnStart(totalFiles int) {
	p.startTime = time.Now()
	p.done = 0
	p.failed = 0
	if p.quiet || totalFiles < 2 {
		p.bar = nil
		return
	}

	p.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Extracting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.w)
		}),
	)
}

func (p *progressReporter) OnFileDone(file string, err error) {
	p.done++
	if err != nil {
		p.failed++
	}
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *progressReporter) OnComplete() {
	if p.bar == nil {
		return
	}
	p.bar.Finish()
	p.bar = nil
	fmt.Fprintf(p.w, "✓ Extracted %d of %d files in %.1fs\n",
		p.done-p.failed, p.done, time.Since(p.startTime).Seconds())
}
