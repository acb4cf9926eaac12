package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Load tool for the read surface: hammers /transaction_history and
// /get_tx_info/{hash} to soak-test the store path without spending
// funds.

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
)

// Metrics
var (
	totalRequests uint64
	success200    uint64
	fail404       uint64
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "history", "Workload type: history | status")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	hashes := fetchKnownHashes()
	if workload == "status" && len(hashes) == 0 {
		log.Fatal("status workload needs at least one recorded transaction")
	}

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start, hashes)
	}

	wg.Wait()
	printResults(time.Since(start))
}

// fetchKnownHashes pulls the current history once so the status workload
// queries real hashes.
func fetchKnownHashes() []string {
	resp, err := http.Get(targetURL + "/transaction_history")
	if err != nil {
		log.Fatalf("Unable to fetch history: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Transactions []struct {
			TxHash string `json:"tx_hash"`
		} `json:"transactions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Fatalf("Unable to decode history: %v", err)
	}

	hashes := make([]string, 0, len(body.Transactions))
	for _, tx := range body.Transactions {
		hashes = append(hashes, tx.TxHash)
	}
	return hashes
}

func worker(wg *sync.WaitGroup, start time.Time, hashes []string) {
	defer wg.Done()
	client := &http.Client{Timeout: 10 * time.Second}

	for time.Since(start) < duration {
		url := targetURL + "/transaction_history"
		if workload == "status" {
			url = targetURL + "/get_tx_info/" + hashes[rand.Intn(len(hashes))]
		}

		resp, err := client.Get(url)
		atomic.AddUint64(&totalRequests, 1)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			atomic.AddUint64(&success200, 1)
		case http.StatusNotFound:
			atomic.AddUint64(&fail404, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
	}
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s200 := atomic.LoadUint64(&success200)
	f404 := atomic.LoadUint64(&fail404)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()

	results := map[string]interface{}{
		"workload":       workload,
		"duration_sec":   d.Seconds(),
		"total_requests": total,
		"throughput_tps": tps,
		"success_ok":     s200,
		"not_found":      f404,
		"errors":         fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	// Also save to file
	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
