package main

import (
	"PcapSpectra/internal/api"
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/manager"
	"PcapSpectra/pkg/pcap"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/gopacket/layers"
)

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	configFile := flag.String("config", "", "Path to a YAML or TOML configuration file")
	listenAddr := flag.String("listen", "", "Serve the summary over HTTP on this address (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path_to_pcap_file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// 1. Get pcap file path from command-line arguments
	if flag.NArg() != 1 {
		flag.Usage()
		exitCode = 1
		return
	}
	pcapFilePath := flag.Arg(0)

	// 2. Load configuration
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadConfig(*configFile)
		if err != nil {
			log.Printf("Failed to load config: %v", err)
			exitCode = 1
			return
		}
		log.Printf("Loaded config from %s", *configFile)
	}
	if *listenAddr != "" {
		cfg.API.Enabled = true
		cfg.API.ListenAddr = *listenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize modules
	managerImpl := manager.NewManager(cfg)
	log.Println("Manager initialized.")

	// 4. Run the capture pass and write the summary
	if err := analyze(ctx, cfg, managerImpl, pcapFilePath); err != nil {
		log.Printf("Capture pass failed: %v", err)
		exitCode = 1
	}
	log.Println("Shutdown complete.")
}

// analyze owns m: its writers are closed on every return path.
func analyze(ctx context.Context, cfg *config.Config, m *manager.Manager, pcapFilePath string) error {
	defer m.Close()

	pcapReader, err := pcap.NewReader(pcapFilePath)
	if err != nil {
		return fmt.Errorf("failed to open pcap file: %w", err)
	}
	defer pcapReader.Close()
	if lt := pcapReader.LinkType(); lt != layers.LinkTypeEthernet {
		log.Printf("Warning: capture link type is %s, frames are decoded as Ethernet.", lt)
	}
	log.Printf("Reading packets from '%s'...", pcapFilePath)

	return run(ctx, cfg, m, pcapReader, filepath.Base(pcapFilePath))
}

func run(ctx context.Context, cfg *config.Config, m *manager.Manager, reader *pcap.Reader, name string) error {
	s, err := m.Run(ctx, name, reader)
	if s == nil {
		return err
	}
	if err != nil {
		log.Printf("Some writers failed: %v", err)
	}
	log.Printf("Finished reading %d packets from pcap file.", reader.Frames())

	// 5. Optionally serve the summary until interrupted
	if cfg.API.Enabled {
		return api.Serve(ctx, cfg.API.ListenAddr, s)
	}
	return nil
}
