// Package framegen builds synthetic Ethernet frames and capture files.
// It backs the pcapgen script and the package tests.
package framegen

import (
	"PcapSpectra/internal/model"
	"fmt"
	"io"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const (
	ethernetHeaderLen = 14
	arpLen            = 28
)

var (
	srcMAC       = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	dstMAC       = net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA}
	broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

var serializeOptions = gopacket.SerializeOptions{
	ComputeChecksums: true,
	FixLengths:       true,
}

// TCP builds an Ethernet/IP/TCP frame. The IP family follows the addresses.
func TCP(src, dst string, srcPort, dstPort uint16, payloadSize int) ([]byte, error) {
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		Seq:     1,
		ACK:     true,
		PSH:     true,
		Window:  14600,
	}
	return ipFrame(src, dst, layers.IPProtocolTCP, tcp, payloadSize)
}

// UDP builds an Ethernet/IP/UDP frame. The IP family follows the addresses.
func UDP(src, dst string, srcPort, dstPort uint16, payloadSize int) ([]byte, error) {
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(srcPort),
		DstPort: layers.UDPPort(dstPort),
	}
	return ipFrame(src, dst, layers.IPProtocolUDP, udp, payloadSize)
}

// ICMPEcho builds an echo request, ICMPv4 or ICMPv6 depending on the addresses.
func ICMPEcho(src, dst string, payloadSize int) ([]byte, error) {
	srcAddr, err := netip.ParseAddr(src)
	if err != nil {
		return nil, err
	}
	if srcAddr.Is4() {
		icmp := &layers.ICMPv4{
			TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
			Id:       1,
			Seq:      1,
		}
		return ipFrame(src, dst, layers.IPProtocolICMPv4, icmp, payloadSize)
	}
	icmp := &layers.ICMPv6{
		TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeEchoRequest, 0),
	}
	return ipFrame(src, dst, layers.IPProtocolICMPv6, icmp, payloadSize)
}

// IPRaw builds an IP frame whose payload is opaque bytes under the given protocol number.
func IPRaw(src, dst string, proto layers.IPProtocol, payloadSize int) ([]byte, error) {
	return ipFrame(src, dst, proto, nil, payloadSize)
}

// ARPRequest builds a who-has request. The frame is returned unpadded, as a
// capture on the sending host sees it (42 bytes).
func ARPRequest(sender, target string) ([]byte, error) {
	senderAddr, err := netip.ParseAddr(sender)
	if err != nil {
		return nil, err
	}
	targetAddr, err := netip.ParseAddr(target)
	if err != nil {
		return nil, err
	}
	if !senderAddr.Is4() || !targetAddr.Is4() {
		return nil, fmt.Errorf("arp needs IPv4 addresses, got %s and %s", sender, target)
	}
	senderIP, targetIP := senderAddr.As4(), targetAddr.As4()

	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       broadcastMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   srcMAC,
		SourceProtAddress: senderIP[:],
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    targetIP[:],
	}
	data, err := serialize(eth, arp)
	if err != nil {
		return nil, err
	}
	return data[:ethernetHeaderLen+arpLen], nil
}

// RawEthernet builds a frame of exactly frameLen bytes with an arbitrary EtherType.
func RawEthernet(etherType layers.EthernetType, frameLen int) ([]byte, error) {
	if frameLen < ethernetHeaderLen {
		return nil, fmt.Errorf("frame length %d is shorter than an ethernet header", frameLen)
	}
	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: etherType,
	}
	data, err := serialize(eth, gopacket.Payload(make([]byte, frameLen-ethernetHeaderLen)))
	if err != nil {
		return nil, err
	}
	return data[:frameLen], nil
}

func ipFrame(src, dst string, proto layers.IPProtocol, transport gopacket.SerializableLayer, payloadSize int) ([]byte, error) {
	srcAddr, err := netip.ParseAddr(src)
	if err != nil {
		return nil, err
	}
	dstAddr, err := netip.ParseAddr(dst)
	if err != nil {
		return nil, err
	}
	if srcAddr.Is4() != dstAddr.Is4() {
		return nil, fmt.Errorf("mixed address families: %s and %s", src, dst)
	}

	eth := &layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC}
	var network gopacket.NetworkLayer
	var networkLayer gopacket.SerializableLayer
	if srcAddr.Is4() {
		eth.EthernetType = layers.EthernetTypeIPv4
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Protocol: proto,
			SrcIP:    srcAddr.AsSlice(),
			DstIP:    dstAddr.AsSlice(),
		}
		network, networkLayer = ip, ip
	} else {
		eth.EthernetType = layers.EthernetTypeIPv6
		ip := &layers.IPv6{
			Version:    6,
			HopLimit:   64,
			NextHeader: proto,
			SrcIP:      srcAddr.AsSlice(),
			DstIP:      dstAddr.AsSlice(),
		}
		network, networkLayer = ip, ip
	}

	stack := []gopacket.SerializableLayer{eth, networkLayer}
	switch l := transport.(type) {
	case *layers.TCP:
		if err := l.SetNetworkLayerForChecksum(network); err != nil {
			return nil, err
		}
	case *layers.UDP:
		if err := l.SetNetworkLayerForChecksum(network); err != nil {
			return nil, err
		}
	case *layers.ICMPv6:
		if err := l.SetNetworkLayerForChecksum(network); err != nil {
			return nil, err
		}
	}
	if transport != nil {
		stack = append(stack, transport)
	}
	stack = append(stack, gopacket.Payload(make([]byte, payloadSize)))
	return serialize(stack...)
}

func serialize(stack ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, serializeOptions, stack...); err != nil {
		return nil, fmt.Errorf("failed to serialize layers: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePcap writes frames as a classic nanosecond-resolution pcap stream.
func WritePcap(w io.Writer, frames []model.Frame) error {
	pcapWriter := pcapgo.NewWriterNanos(w)
	if err := pcapWriter.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return fmt.Errorf("failed to write pcap header: %w", err)
	}
	for i, f := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     f.Timestamp,
			CaptureLength: len(f.Data),
			Length:        len(f.Data),
		}
		if err := pcapWriter.WritePacket(ci, f.Data); err != nil {
			return fmt.Errorf("failed to write packet %d: %w", i, err)
		}
	}
	return nil
}

// WritePcapNg writes frames as a pcapng stream with a single Ethernet interface.
func WritePcapNg(w io.Writer, frames []model.Frame) error {
	ngWriter, err := pcapgo.NewNgWriter(w, layers.LinkTypeEthernet)
	if err != nil {
		return fmt.Errorf("failed to write pcapng header: %w", err)
	}
	for i, f := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:      f.Timestamp,
			CaptureLength:  len(f.Data),
			Length:         len(f.Data),
			InterfaceIndex: 0,
		}
		if err := ngWriter.WritePacket(ci, f.Data); err != nil {
			return fmt.Errorf("failed to write packet %d: %w", i, err)
		}
	}
	return ngWriter.Flush()
}
