package protocol

import (
	"PcapSpectra/internal/model"
	"net"
	"net/netip"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// frameDecoder holds one set of reusable layers. A layer only shows up in
// decoded when its header decoded without error.
type frameDecoder struct {
	eth     layers.Ethernet
	dot1q   layers.Dot1Q
	arp     layers.ARP
	ip4     layers.IPv4
	ip6     layers.IPv6
	tcp     layers.TCP
	udp     layers.UDP
	icmp4   layers.ICMPv4
	icmp6   layers.ICMPv6
	parser  *gopacket.DecodingLayerParser
	decoded []gopacket.LayerType
}

func newFrameDecoder() *frameDecoder {
	d := &frameDecoder{decoded: make([]gopacket.LayerType, 0, 8)}
	d.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet,
		&d.eth, &d.dot1q, &d.arp, &d.ip4, &d.ip6, &d.tcp, &d.udp, &d.icmp4, &d.icmp6)
	// Payloads and unknown next headers end the walk.
	d.parser.IgnoreUnsupported = true
	return d
}

var decoderPool = sync.Pool{
	New: func() any { return newFrameDecoder() },
}

// Decode uses gopacket to peel the link, network and transport headers off a raw
// Ethernet frame. It never fails: frames whose headers cannot be decoded are
// reported as model.KindUnclassified.
func Decode(data []byte) model.Headers {
	d := decoderPool.Get().(*frameDecoder)
	defer decoderPool.Put(d)
	return d.decode(data)
}

func (d *frameDecoder) decode(data []byte) model.Headers {
	headers := model.Headers{FrameLength: len(data)}

	// A decode error only stops the walk; every layer before it is still usable.
	_ = d.parser.DecodeLayers(data, &d.decoded)

	// The parser follows the declared EtherType, so the family never comes
	// from the address bytes.
	for i, typ := range d.decoded {
		switch typ {
		case layers.LayerTypeARP:
			headers.Kind = model.KindARP
			return headers
		case layers.LayerTypeIPv4:
			src, srcOK := addrFrom(d.ip4.SrcIP, 4)
			dst, dstOK := addrFrom(d.ip4.DstIP, 4)
			if !srcOK || !dstOK {
				return headers
			}
			headers.Kind = model.KindIPv4
			headers.SrcAddr, headers.DstAddr = src, dst
			headers.NetworkLength = len(d.ip4.Contents) + len(d.ip4.Payload)
			d.transport(d.decoded[i+1:], layers.LayerTypeICMPv4, &headers)
			return headers
		case layers.LayerTypeIPv6:
			src, srcOK := addrFrom(d.ip6.SrcIP, 16)
			dst, dstOK := addrFrom(d.ip6.DstIP, 16)
			if !srcOK || !dstOK {
				return headers
			}
			headers.Kind = model.KindIPv6
			headers.SrcAddr, headers.DstAddr = src, dst
			headers.NetworkLength = len(d.ip6.Contents) + len(d.ip6.Payload)
			d.transport(d.decoded[i+1:], layers.LayerTypeICMPv6, &headers)
			return headers
		}
	}
	return headers
}

// transport fills in the transport variant from the layers decoded above IP.
// A TCP or UDP header that failed to decode is absent here, which leaves
// the frame at TransportOther.
func (d *frameDecoder) transport(above []gopacket.LayerType, icmpType gopacket.LayerType, headers *model.Headers) {
	headers.Transport = model.TransportOther
	if len(above) == 0 {
		return
	}
	switch above[0] {
	case layers.LayerTypeTCP:
		headers.Transport = model.TransportTCP
		headers.SrcPort = uint16(d.tcp.SrcPort)
		headers.DstPort = uint16(d.tcp.DstPort)
	case layers.LayerTypeUDP:
		headers.Transport = model.TransportUDP
		headers.SrcPort = uint16(d.udp.SrcPort)
		headers.DstPort = uint16(d.udp.DstPort)
	case icmpType:
		headers.Transport = model.TransportICMP
	}
}

// addrFrom converts an address of the expected byte width. A width mismatch
// is reported as failure instead of being reinterpreted in the other family.
func addrFrom(ip net.IP, width int) (netip.Addr, bool) {
	if len(ip) != width {
		return netip.Addr{}, false
	}
	return netip.AddrFromSlice(ip)
}
