package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const (
	numWorkers     = 8
	numSubscribers = 200
	testDuration   = 10 * time.Second
	notePrefix     = "lt:"
)

var modules = []string{"clock", "calendar", "weather", "photos", "note", "popups"}

var (
	baseURL     = flag.String("url", "http://127.0.0.1:8787", "homeboard base URL")
	pairingCode = flag.String("code", "", "pairing code printed by the server at boot")
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

// streamClient has no timeout; SSE responses stay open for the whole run.
var streamClient = &http.Client{Transport: httpClient.Transport}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	flag.Parse()
	fmt.Println("=== Homeboard Load Test ===")
	fmt.Printf("Writers: %d | Subscribers: %d | Duration: %s\n\n", numWorkers, numSubscribers, testDuration)

	if *pairingCode == "" {
		fmt.Println("FAILED: -code is required")
		return
	}

	fmt.Print("Waiting for server... ")
	var deviceID string
	for i := 0; i < 30; i++ {
		id, err := fetchDeviceID()
		if err == nil {
			deviceID = id
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	token, err := pair(*pairingCode)
	if err != nil {
		fmt.Printf("FAILED: pair: %v\n", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	delivery := newDeliveryStats()
	var subs sync.WaitGroup
	var connected atomic.Int64
	for i := 0; i < numSubscribers; i++ {
		subs.Add(1)
		go func() {
			defer subs.Done()
			subscribe(ctx, deviceID, &connected, delivery)
		}()
	}
	time.Sleep(time.Second)
	fmt.Printf("Subscribers connected: %d\n", connected.Load())

	fmt.Println("\n--- Phase 1: Writes (note, toggle, popup) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.60:
			return doNote(token)
		case r < 0.85:
			return doToggle(rng, token)
		default:
			return doPopup(rng, token)
		}
	})

	fmt.Println("\n--- Phase 2: Reads with background writes (10% write) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doNote(token)
		case r < 0.70:
			return doGet("/api/state")
		default:
			return doGet("/api/popups")
		}
	})

	cancel()
	subs.Wait()
	delivery.print()
}

func fetchDeviceID() (string, error) {
	resp, err := httpClient.Get(*baseURL + "/api/state")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var body struct {
		DeviceID string `json:"deviceId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.DeviceID, nil
}

func pair(code string) (string, error) {
	data, _ := json.Marshal(map[string]string{"code": code})
	resp, err := httpClient.Post(*baseURL+"/api/control/pair", "application/json", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Token, nil
}

// subscribe holds one SSE stream open and records how long each note
// written by doNote took to arrive.
func subscribe(ctx context.Context, deviceID string, connected *atomic.Int64, delivery *deliveryStats) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, *baseURL+"/api/display/"+deviceID+"/events", nil)
	resp, err := streamClient.Do(req)
	if err != nil {
		delivery.failed.Add(1)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		delivery.failed.Add(1)
		return
	}
	connected.Add(1)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: ") && event == "state":
			var doc struct {
				Note string `json:"note"`
			}
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &doc) == nil {
				delivery.observe(doc.Note)
			}
		case line == "":
			event = ""
		}
	}
	if ctx.Err() == nil {
		delivery.dropped.Add(1)
	}
}

type deliveryStats struct {
	mu        sync.Mutex
	latencies []time.Duration
	failed    atomic.Int64
	dropped   atomic.Int64
}

func newDeliveryStats() *deliveryStats {
	return &deliveryStats{}
}

func (d *deliveryStats) observe(note string) {
	if !strings.HasPrefix(note, notePrefix) {
		return
	}
	sent, err := strconv.ParseInt(strings.TrimPrefix(note, notePrefix), 10, 64)
	if err != nil {
		return
	}
	lat := time.Since(time.Unix(0, sent))
	d.mu.Lock()
	d.latencies = append(d.latencies, lat)
	d.mu.Unlock()
}

func (d *deliveryStats) print() {
	d.mu.Lock()
	defer d.mu.Unlock()
	sort.Slice(d.latencies, func(i, j int) bool { return d.latencies[i] < d.latencies[j] })

	fmt.Println("\n--- Push delivery ---")
	fmt.Printf("  Deliveries: %d | Failed subscribes: %d | Streams ended early: %d\n",
		len(d.latencies), d.failed.Load(), d.dropped.Load())
	fmt.Printf("  Avg %s | P50 %s | P95 %s | P99 %s\n",
		fmtDur(avgDuration(d.latencies)), fmtDur(percentile(d.latencies, 0.50)),
		fmtDur(percentile(d.latencies, 0.95)), fmtDur(percentile(d.latencies, 0.99)))
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-34s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 100))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-34s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)), fmtDur(percentile(s.latencies, 0.95)), fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 100))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doNote(token string) result {
	note := notePrefix + strconv.FormatInt(time.Now().UnixNano(), 10)
	return doPost("/api/control/state", token, map[string]any{"state": map[string]any{"note": note}})
}

func doToggle(rng *rand.Rand, token string) result {
	return doPost("/api/control/modules/toggle", token, map[string]any{
		"module":  modules[rng.Intn(len(modules))],
		"enabled": rng.Intn(2) == 1,
	})
}

func doPopup(rng *rand.Rand, token string) result {
	return doPost("/api/control/popups", token, map[string]any{
		"message":         fmt.Sprintf("load %d", rng.Intn(1000)),
		"durationSeconds": 5,
	})
}

func doPost(path, token string, body any) result {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	endpoint := "POST " + path
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func doGet(path string) result {
	endpoint := "GET " + path
	start := time.Now()
	resp, err := httpClient.Get(*baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
