package main

import (
	"PcapSpectra/internal/writer"
	"fmt"
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/gobana/main.go <summary.gob>")
		os.Exit(1)
	}

	s, err := writer.ReadGob(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to decode gob data: %v", err)
	}

	if err := writer.WriteReport(os.Stdout, s); err != nil {
		log.Fatalf("Failed to print summary: %v", err)
	}
}
