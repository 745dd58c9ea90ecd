package main

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/query"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

func main() {
	mode := flag.String("mode", "api", "Query mode: 'api' to query a running analyzer, 'direct' to query ClickHouse directly.")
	apiAddr := flag.String("api", "http://localhost:8080", "Base URL of the analyzer API (api mode).")
	configFile := flag.String("config", "configs/config.yaml", "Config file with the clickhouse writer settings (direct mode).")
	runID := flag.String("run", "", "Run ID to inspect (direct mode). Lists runs when empty.")
	source := flag.String("source", "", "Only list runs of this capture file (direct mode).")
	endTimeStr := flag.String("end", "", "Only list runs generated before this RFC3339 time (direct mode).")
	series := flag.String("series", "", "Distribution to fetch: packet_size, flow_bytes or flow_duration. Protocol mix when empty.")
	transport := flag.String("transport", "", "Transport of a flow distribution: tcp or udp.")
	flag.Parse()

	log.Printf("Running in '%s' mode.", *mode)

	switch *mode {
	case "api":
		queryViaAPI(*apiAddr, *series, *transport)
	case "direct":
		var endTime time.Time
		if *endTimeStr != "" {
			var err error
			endTime, err = time.Parse(time.RFC3339, *endTimeStr)
			if err != nil {
				log.Fatalf("Invalid end time format: %v", err)
			}
		}
		directQueryClickHouse(*configFile, *runID, *source, endTime, *series, *transport)
	default:
		log.Fatalf("Invalid mode: %s. Use 'api' or 'direct'.", *mode)
	}
}

// --- API Query Logic ---
func queryViaAPI(baseURL, series, transport string) {
	path := "/api/v1/protocols"
	if series != "" {
		path = "/api/v1/distributions/" + strings.ReplaceAll(series, "_", "-")
		if transport != "" {
			path += "/" + transport
		}
	}
	apiURL := strings.TrimSuffix(baseURL, "/") + path
	log.Printf("Sending request to %s", apiURL)

	resp, err := http.Get(apiURL)
	if err != nil {
		log.Fatalf("Error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned non-200 status code: %d\nResponse: %s", resp.StatusCode, string(respBody))
	}

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, respBody, "", "  "); err != nil {
		log.Printf("Could not prettify JSON, printing raw response:")
		fmt.Println(string(respBody))
		return
	}

	log.Println("---")
	fmt.Println(prettyJSON.String())
}

// --- Direct ClickHouse Query Logic ---
func directQueryClickHouse(configFile, runID, source string, endTime time.Time, series, transport string) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	var chCfg *config.ClickHouseConfig
	for i := range cfg.Writers {
		if cfg.Writers[i].Type == "clickhouse" {
			chCfg = &cfg.Writers[i].ClickHouse
			break
		}
	}
	if chCfg == nil {
		log.Fatalf("No clickhouse writer in %s", configFile)
	}

	querier, err := query.NewClickHouseQuerier(*chCfg)
	if err != nil {
		log.Fatalf("Error connecting to ClickHouse: %v", err)
	}
	log.Println("Successfully connected to ClickHouse.")

	ctx := context.Background()
	switch {
	case runID == "":
		runs, err := querier.Runs(ctx, query.RunsRequest{Source: source, EndTime: endTime})
		if err != nil {
			log.Fatalf("Error listing runs: %v", err)
		}
		if len(runs) == 0 {
			log.Println("No runs found for the specified criteria.")
		}
		for _, run := range runs {
			fmt.Printf("RunID: %s\n", run.RunID)
			fmt.Printf("  Source: %s\n", run.Source)
			fmt.Printf("  GeneratedAt: %s\n", run.GeneratedAt.Format(time.RFC3339))
			fmt.Printf("  TotalFrames: %d\n", run.TotalFrames)
			fmt.Println("---------------------")
		}
	case series == "":
		mix, err := querier.ProtocolMix(ctx, runID)
		if err != nil {
			log.Fatalf("Error querying protocol mix: %v", err)
		}
		for _, share := range mix {
			fmt.Printf("%-8s %10d %10.4f\n", share.Label, share.Frames, share.Fraction)
		}
	default:
		d, err := querier.Distribution(ctx, runID, series, transport)
		if err != nil {
			log.Fatalf("Error querying distribution: %v", err)
		}
		for i := range d.Values {
			fmt.Printf("%g\t%.6f\n", d.Values[i], d.Cumulative[i])
		}
	}
}
