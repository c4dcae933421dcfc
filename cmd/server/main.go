package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"multiroute/pkg/api"
	"multiroute/pkg/graph"
	"multiroute/pkg/phantom"
	"multiroute/pkg/routing"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph binary")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	start := time.Now()

	// Load graph.
	log.Printf("Loading graph from %s...", *graphPath)
	chg, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d fwd arcs, %d bwd arcs",
		chg.NumNodes, len(chg.FwdHead), len(chg.BwdHead))

	// Load the street-name table cmd/preprocess wrote alongside the binary.
	names, err := readNamesSidecar(*graphPath + ".names")
	if err != nil {
		log.Printf("No street-name table found (%v); route descriptions will have empty names", err)
	}

	// Rebuild a lightweight edge-based Graph view over the CH graph's own
	// per-segment metadata, for phantom-node spatial indexing. CH never
	// renumbers nodes, so these arrays line up with chg's 1:1.
	origGraph := &graph.Graph{
		NumNodes:   chg.NumNodes,
		Twin:       chg.Twin,
		NameID:     chg.NameID,
		SelfWeight: chg.SelfWeight,
		Duration:   chg.Duration,
		FromLat:    chg.FromLat,
		FromLon:    chg.FromLon,
		ToLat:      chg.ToLat,
		ToLon:      chg.ToLon,
	}

	log.Println("Building spatial index...")
	resolver := phantom.NewResolver(origGraph)
	engine := routing.NewEngine(chg, resolver)

	// Reclaim memory from init-time temporaries. Without this, Go's heap
	// retains peak RSS from index construction (GC doubles heap each cycle:
	// 120→240→480→960→1920 MB). This returns unused pages to the OS.
	runtime.GC()
	debug.FreeOSMemory()

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	// Setup HTTP server.
	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	stats := api.StatsResponse{
		NumNodes:    chg.NumNodes,
		NumFwdEdges: len(chg.FwdHead),
		NumBwdEdges: len(chg.BwdHead),
	}

	handlers := api.NewHandlers(engine, chg, names, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

// readNamesSidecar reads the newline-delimited street-name table written by
// cmd/preprocess.
func readNamesSidecar(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		names = append(names, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
