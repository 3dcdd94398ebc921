package sender

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Progress observes a transmission. Start is called once with the number of
// commands, Step after each acknowledged command and Finish when Transmit
// returns.
type Progress interface {
	Start(total int)
	Step(command string)
	Finish()
}

// NopProgress ignores all events.
type NopProgress struct{}

func (NopProgress) Start(int)   {}
func (NopProgress) Step(string) {}
func (NopProgress) Finish()     {}

// BarProgress draws a terminal progress bar counting commands.
type BarProgress struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

func NewBarProgress(w io.Writer, description string) *BarProgress {
	return &BarProgress{w: w, description: description}
}

func (b *BarProgress) Start(total int) {
	if total == 0 {
		return
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(b.description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("cmd"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { io.WriteString(b.w, "\n") }),
	)
}

func (b *BarProgress) Step(string) {
	if b.bar != nil {
		b.bar.Add(1)
	}
}

func (b *BarProgress) Finish() {
	if b.bar != nil && !b.bar.IsFinished() {
		// Leave a partial bar in place on failure.
		io.WriteString(b.w, "\n")
	}
}
