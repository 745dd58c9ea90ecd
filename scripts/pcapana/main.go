package main

import (
	"PcapSpectra/internal/engine/protocol"
	"PcapSpectra/pkg/pcap"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Prints the decoded headers of the first frames of a capture.
func main() {
	limit := flag.Int("n", 5, "Number of frames to print (0 for all)")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("Usage: go run ./scripts/pcapana/main.go [-n count] <path_to_pcap_file>")
		os.Exit(1)
	}

	reader, err := pcap.NewReader(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer reader.Close()

	for i := 0; *limit == 0 || i < *limit; i++ {
		frame, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}

		h := protocol.Decode(frame.Data)
		fmt.Printf("==== Frame %d (%s) ====\n", i+1, frame.Timestamp.Format(time.RFC3339Nano))
		fmt.Printf("Kind: %s, frame length %d\n", h.Kind, h.FrameLength)
		if !h.IsIP() {
			continue
		}
		fmt.Printf("IP length: %d, transport: %s\n", h.NetworkLength, h.Transport)
		if key, ok := protocol.DeriveFlowKey(h); ok {
			fmt.Printf("Flow: %s\n", key)
		} else {
			fmt.Printf("%s -> %s\n", h.SrcAddr, h.DstAddr)
		}
	}
}
