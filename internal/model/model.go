package model

import (
	"fmt"
	"net/netip"
	"time"
)

// Frame is one captured link-layer frame together with its capture timestamp.
type Frame struct {
	Timestamp time.Time
	Data      []byte
}

// LinkKind tells which network-layer protocol a frame declared in its link header.
type LinkKind uint8

const (
	KindUnclassified LinkKind = iota
	KindARP
	KindIPv4
	KindIPv6
)

func (k LinkKind) String() string {
	switch k {
	case KindARP:
		return "arp"
	case KindIPv4:
		return "ipv4"
	case KindIPv6:
		return "ipv6"
	default:
		return "unclassified"
	}
}

// Transport is the transport-layer variant carried inside an IP packet.
type Transport uint8

const (
	TransportOther Transport = iota
	TransportTCP
	TransportUDP
	TransportICMP
)

func (t Transport) String() string {
	switch t {
	case TransportTCP:
		return "tcp"
	case TransportUDP:
		return "udp"
	case TransportICMP:
		return "icmp"
	default:
		return "other"
	}
}

// Headers is the decoded header stack of a single frame.
// Addresses, transport and ports are only meaningful for KindIPv4 and KindIPv6.
type Headers struct {
	Kind LinkKind

	// FrameLength is the length of the whole frame, link header included.
	FrameLength int
	// NetworkLength is the IP header plus IP payload length.
	NetworkLength int

	SrcAddr   netip.Addr
	DstAddr   netip.Addr
	Transport Transport
	SrcPort   uint16
	DstPort   uint16
}

// IsIP reports whether the frame carried an IPv4 or IPv6 packet.
func (h Headers) IsIP() bool {
	return h.Kind == KindIPv4 || h.Kind == KindIPv6
}

// FlowKey identifies a flow. It is direction sensitive: A->B and B->A are distinct flows.
type FlowKey struct {
	SrcAddr   netip.Addr
	DstAddr   netip.Addr
	SrcPort   uint16
	DstPort   uint16
	Transport Transport
}

func (k FlowKey) String() string {
	return fmt.Sprintf("%s->%s/%s",
		netip.AddrPortFrom(k.SrcAddr, k.SrcPort),
		netip.AddrPortFrom(k.DstAddr, k.DstPort),
		k.Transport)
}

// Counters holds the per-protocol frame counters of a run.
type Counters struct {
	Total uint64 `json:"total"`
	TCP   uint64 `json:"tcp"`
	UDP   uint64 `json:"udp"`
	ICMP  uint64 `json:"icmp"`
	ARP   uint64 `json:"arp"`
}

// Other is the number of frames that were neither TCP, UDP, ICMP nor ARP.
func (c Counters) Other() uint64 {
	return c.Total - (c.TCP + c.UDP + c.ICMP + c.ARP)
}
