package render

import (
	"fmt"
	"time"
)

// Profiler accumulates the cost of the frames rendered since the last Reset.
type Profiler struct {
	Frames     int
	TraceTime  time.Duration
	EdgeTime   time.Duration
	ScaleTime  time.Duration
	Rays       uint64
	Hits       uint64
	ShadowRays uint64
}

func (p *Profiler) Reset() {
	*p = Profiler{}
}

// Rows lists the counters as label/value pairs for a stats table.
func (p *Profiler) Rows() [][]string {
	perFrame := func(d time.Duration) string {
		if p.Frames == 0 {
			return "-"
		}
		return (d / time.Duration(p.Frames)).String()
	}
	return [][]string{
		{"frames", fmt.Sprint(p.Frames)},
		{"trace/frame", perFrame(p.TraceTime)},
		{"edges/frame", perFrame(p.EdgeTime)},
		{"scale/frame", perFrame(p.ScaleTime)},
		{"primary rays", fmt.Sprint(p.Rays)},
		{"hits", fmt.Sprint(p.Hits)},
		{"shadow rays", fmt.Sprint(p.ShadowRays)},
	}
}
