package views

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"sensor-recorder/models"
)

// LiveView renders the latest session values as a compact text block.
type LiveView struct {
	out   io.Writer
	width int
}

// NewLiveView writes to out. When out is a terminal the separator lines are
// sized to its width.
func NewLiveView(out io.Writer) *LiveView {
	width := 60
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 {
			width = w
		}
	}
	return &LiveView{out: out, width: width}
}

// Render writes one status block. Missing values print as N/A.
func (v *LiveView) Render(st models.LiveStatus) {
	var b strings.Builder
	rule := strings.Repeat("─", min(v.width, 60))

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "session %s  state=%s  remaining=%.1fs\n",
		st.SessionID, st.State, float64(st.RemainingMs)/1000)

	ls := st.Streams[models.StreamLoudness.String()]
	fmt.Fprintf(&b, "Decibel      (%d/%d)  ", ls.Collected, ls.Buffered)
	if st.Loudness != nil {
		fmt.Fprintf(&b, "t=%d  level=%.2f dB\n", st.Loudness.TimestampMs, st.Loudness.Decibel)
	} else {
		b.WriteString("N/A\n")
	}

	writeMotion(&b, "Accelerometer", st.Accel, st.Streams[models.StreamAccelerometer.String()])
	writeMotion(&b, "Gyroscope", st.Gyro, st.Streams[models.StreamGyroscope.String()])

	io.WriteString(v.out, b.String())
}

func writeMotion(b *strings.Builder, label string, s *models.MotionSample, ss models.StreamStatus) {
	fmt.Fprintf(b, "%-13s(%d/%d)  ", label, ss.Collected, ss.Buffered)
	if s == nil {
		b.WriteString("N/A\n")
		return
	}
	fmt.Fprintf(b, "t=%d  x=%.2f y=%.2f z=%.2f  a=%.2f\n", s.TimestampMs, s.X, s.Y, s.Z, s.Magnitude)
}
