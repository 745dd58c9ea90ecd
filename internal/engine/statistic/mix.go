package statistic

import (
	"PcapSpectra/internal/model"
	"errors"
)

// ErrZeroTotalFrames is returned when a protocol mix is requested before any frame was observed.
var ErrZeroTotalFrames = errors.New("no frames observed")

// Protocol mix labels, in presentation order.
const (
	LabelTCP   = "TCP"
	LabelUDP   = "UDP"
	LabelICMP  = "ICMP"
	LabelARP   = "ARP"
	LabelOther = "Other"
)

// Share is one protocol's portion of all observed frames.
type Share struct {
	Label    string  `json:"label"`
	Frames   uint64  `json:"frames"`
	Fraction float64 `json:"fraction"`
}

// ProtocolMix lists the TCP, UDP, ICMP, ARP and Other shares in that order.
type ProtocolMix []Share

// NewProtocolMix divides every counter by the total frame count.
func NewProtocolMix(c model.Counters) (ProtocolMix, error) {
	if c.Total == 0 {
		return nil, ErrZeroTotalFrames
	}
	total := float64(c.Total)
	mix := ProtocolMix{
		{Label: LabelTCP, Frames: c.TCP},
		{Label: LabelUDP, Frames: c.UDP},
		{Label: LabelICMP, Frames: c.ICMP},
		{Label: LabelARP, Frames: c.ARP},
		{Label: LabelOther, Frames: c.Other()},
	}
	for i := range mix {
		mix[i].Fraction = float64(mix[i].Frames) / total
	}
	return mix, nil
}

// Fraction returns the share for label, or 0 when the label is unknown.
func (m ProtocolMix) Fraction(label string) float64 {
	for _, s := range m {
		if s.Label == label {
			return s.Fraction
		}
	}
	return 0
}
