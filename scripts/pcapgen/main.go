package main

import (
	"PcapSpectra/internal/model"
	"PcapSpectra/pkg/framegen"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/gopacket/layers"
)

// flowPlan is one synthetic conversation.
type flowPlan struct {
	src, dst         string
	srcPort, dstPort uint16
	udp              bool
}

func main() {
	outputFile := flag.String("o", "test.pcap", "Output pcap file path")
	packetCount := flag.Int("c", 1000, "Number of packets to generate")
	flowCount := flag.Int("flows", 50, "Number of distinct TCP/UDP flows")
	ng := flag.Bool("ng", false, "Write pcapng instead of pcap")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()
	if *flowCount < 1 {
		log.Fatalf("-flows must be at least 1")
	}

	rng := rand.New(rand.NewSource(*seed))
	flows := make([]flowPlan, *flowCount)
	for i := range flows {
		v6 := rng.Intn(5) == 0
		flows[i] = flowPlan{
			src:     randomAddr(rng, v6),
			dst:     randomAddr(rng, v6),
			srcPort: uint16(rng.Intn(65535-1024) + 1024),
			dstPort: []uint16{53, 80, 443, 8080}[rng.Intn(4)],
			udp:     rng.Intn(3) == 0,
		}
	}

	log.Printf("Generating %d packets over %d flows into %s...", *packetCount, *flowCount, *outputFile)

	frames := make([]model.Frame, 0, *packetCount)
	ts := time.Now()
	for i := 0; i < *packetCount; i++ {
		if (i+1)%100000 == 0 {
			log.Printf("Generated %d packets...", i+1)
		}
		ts = ts.Add(time.Duration(rng.Intn(5000)) * time.Microsecond)

		data, err := randomFrame(rng, flows)
		if err != nil {
			log.Fatalf("Failed to build packet: %v", err)
		}
		frames = append(frames, model.Frame{Timestamp: ts, Data: data})
	}

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	write := framegen.WritePcap
	if *ng {
		write = framegen.WritePcapNg
	}
	if err := write(f, frames); err != nil {
		log.Fatalf("Failed to write capture: %v", err)
	}

	log.Printf("Successfully generated %d packets into %s.", *packetCount, *outputFile)
}

// randomFrame mixes mostly flow traffic with some ICMP, ARP and non-IP frames.
func randomFrame(rng *rand.Rand, flows []flowPlan) ([]byte, error) {
	payloadSize := rng.Intn(1400) + 50
	switch n := rng.Intn(100); {
	case n < 3:
		return framegen.ARPRequest(randomIPv4(rng), randomIPv4(rng))
	case n < 6:
		return framegen.ICMPEcho(randomIPv4(rng), randomIPv4(rng), 56)
	case n < 8:
		return framegen.RawEthernet(layers.EthernetType(0x88b5), 60)
	}
	fl := flows[rng.Intn(len(flows))]
	if fl.udp {
		return framegen.UDP(fl.src, fl.dst, fl.srcPort, fl.dstPort, payloadSize)
	}
	return framegen.TCP(fl.src, fl.dst, fl.srcPort, fl.dstPort, payloadSize)
}

func randomAddr(rng *rand.Rand, v6 bool) string {
	if v6 {
		return fmt.Sprintf("2001:db8::%x:%x", rng.Intn(0xffff), rng.Intn(0xffff))
	}
	return randomIPv4(rng)
}

func randomIPv4(rng *rand.Rand) string {
	return fmt.Sprintf("%d.%d.%d.%d", rng.Intn(223)+1, rng.Intn(256), rng.Intn(256), rng.Intn(254)+1)
}
