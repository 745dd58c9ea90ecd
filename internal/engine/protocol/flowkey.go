package protocol

import "PcapSpectra/internal/model"

// DeriveFlowKey returns the flow identity of a decoded frame. Only TCP and UDP
// over IPv4/IPv6 form flows; ARP, ICMP, other transports and unclassified
// frames report false.
func DeriveFlowKey(h model.Headers) (model.FlowKey, bool) {
	if !h.IsIP() {
		return model.FlowKey{}, false
	}
	switch h.Transport {
	case model.TransportTCP, model.TransportUDP:
		return model.FlowKey{
			SrcAddr:   h.SrcAddr,
			DstAddr:   h.DstAddr,
			SrcPort:   h.SrcPort,
			DstPort:   h.DstPort,
			Transport: h.Transport,
		}, true
	default:
		return model.FlowKey{}, false
	}
}
