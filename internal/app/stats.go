package app

import (
	"fmt"
	"time"

	"dropview/internal/profiling"
	"dropview/internal/viewer"

	"github.com/dustin/go-humanize"
)

// fpsMeter smooths the instantaneous frame rate
type fpsMeter struct {
	last time.Time
	fps  float64
}

const fpsSmoothing = 0.1

func (m *fpsMeter) frame(now time.Time) {
	if !m.last.IsZero() {
		if dt := now.Sub(m.last).Seconds(); dt > 0 {
			inst := 1 / dt
			if m.fps == 0 {
				m.fps = inst
			} else {
				m.fps += (inst - m.fps) * fpsSmoothing
			}
		}
	}
	m.last = now
}

func (m *fpsMeter) value() float64 { return m.fps }

// statsLines formats the overlay text
func statsLines(st viewer.Stats, vp viewer.ViewportState, fps float64) []string {
	layout := "wide"
	if vp.Compact {
		layout = "compact"
	}
	return []string{
		fmt.Sprintf("objects %d/%d  loads %d", st.Objects, st.Budget, st.Requested),
		fmt.Sprintf("fps %s  frames %s", humanize.FtoaWithDigits(fps, 1), humanize.Comma(int64(st.Frames))),
		fmt.Sprintf("substeps %s  sim %ss", humanize.Comma(int64(st.Substeps)), humanize.FtoaWithDigits(st.SimTime, 1)),
		fmt.Sprintf("physics %s  render %s",
			profiling.FormatMs(profiling.Sum("physics.")), profiling.FormatMs(profiling.Sum("renderer."))),
		fmt.Sprintf("%s %dx%d", layout, vp.Width, vp.Height),
	}
}
