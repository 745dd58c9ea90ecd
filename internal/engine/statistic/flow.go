package statistic

import (
	"PcapSpectra/internal/model"
	"time"
)

// Flow holds the running aggregates of one flow.
type Flow struct {
	Key         model.FlowKey
	ByteCount   uint64
	PacketCount uint64
	FirstSeen   time.Time
	// LastSeen stays zero until a second frame of the flow is observed.
	LastSeen time.Time
}

// Observe folds one frame of the flow into the record.
func (f *Flow) Observe(ts time.Time, frameLength int) {
	if f.PacketCount == 0 {
		f.FirstSeen = ts
	} else {
		f.LastSeen = ts
	}
	f.PacketCount++
	f.ByteCount += uint64(frameLength)
}

// End returns the timestamp of the last observed frame; for a flow seen once that is FirstSeen.
func (f *Flow) End() time.Time {
	if f.LastSeen.IsZero() {
		return f.FirstSeen
	}
	return f.LastSeen
}

// Duration is the active duration in seconds with sub-second precision.
// Out-of-order input can make it negative; it is reported unclamped.
func (f *Flow) Duration() float64 {
	return f.End().Sub(f.FirstSeen).Seconds()
}
