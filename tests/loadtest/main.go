package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

const (
	numWorkers = 50
	numTeams   = 60
	numMatches = 80
	numScouts  = 40
)

var (
	baseURL      = flag.String("url", "http://127.0.0.1:8080/api", "scouting API base URL")
	testDuration = flag.Duration("duration", 10*time.Second, "length of each load phase")
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

	fmt.Println("=== scoutd load test ===")
	fmt.Printf("Target: %s | Workers: %d | Phase: %s\n", *baseURL, numWorkers, *testDuration)
	fmt.Printf("Teams: %d | Matches: %d | Scouts: %d\n\n", numTeams, numMatches, numScouts)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/pitscout")
		if err == nil {
			drain(resp)
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Submissions (match + pit forms) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.8 {
			return submitMatch(rng)
		}
		return submitPit(rng)
	})

	fmt.Println("\n--- Phase 2: Event day mix (claims, submissions, listings) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return toggleButton(rng)
		case r < 0.45:
			return buttonStatus(rng)
		case r < 0.55:
			return matchStatus(rng)
		case r < 0.80:
			return submitMatch(rng)
		case r < 0.90:
			return get("GET /matchscout", "/matchscout")
		default:
			return get("GET /all-scout-instances", "/all-scout-instances")
		}
	})

	fmt.Println("\n--- Phase 3: Exports and listings ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return submitMatch(rng)
		case r < 0.35:
			return get("GET /matchscout/export/csv", "/matchscout/export/csv", http.StatusNotFound)
		case r < 0.50:
			return get("GET /pitscout/export/csv", "/pitscout/export/csv", http.StatusNotFound)
		case r < 0.75:
			return get("GET /pitscout", "/pitscout")
		default:
			return get("GET /matchscout", "/matchscout")
		}
	})

	fmt.Println("\n--- Phase 4: Claim race ---")
	claimRace()
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

// claimRace fires one toggle per scout at the same unclaimed match and
// checks that exactly one of them wins.
func claimRace() {
	team := fmt.Sprintf("%d", 9000+rand.Intn(999))
	path := fmt.Sprintf("/matchscout/%s/%d/button", team, rand.Intn(1000)+1000)

	var wins, denials, failures atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < numScouts; i++ {
		wg.Add(1)
		go func(scout int) {
			defer wg.Done()
			r := send(http.MethodPost, "POST /button (race)", path, map[string]any{
				"username": fmt.Sprintf("scout%d", scout),
			}, http.StatusOK, http.StatusForbidden)
			switch {
			case r.err:
				failures.Inc()
			case r.status == http.StatusOK:
				wins.Inc()
			default:
				denials.Inc()
			}
		}(i)
	}
	wg.Wait()

	verdict := "OK"
	if wins.Load() != 1 {
		verdict = "FAILED"
	}
	fmt.Printf("  %s: winners=%d denied=%d errors=%d\n", verdict, wins.Load(), denials.Load(), failures.Load())
}

func submitMatch(rng *rand.Rand) result {
	team := rng.Intn(numTeams) + 1
	return send(http.MethodPost, "POST /matchscout/{team}", fmt.Sprintf("/matchscout/%d", team), map[string]any{
		"username":         scout(rng),
		"matchNumber":      rng.Intn(numMatches) + 1,
		"autoL1Scores":     rng.Intn(4),
		"teleopL4Scores":   rng.Intn(8),
		"leftStartingZone": rng.Float64() < 0.7,
		"climbLevel":       []string{"None", "Shallow", "Deep"}[rng.Intn(3)],
		"robotSpeed":       "fast",
	}, http.StatusOK)
}

func submitPit(rng *rand.Rand) result {
	team := rng.Intn(numTeams) + 1
	return send(http.MethodPost, "POST /submit-pitscout/{team}", fmt.Sprintf("/submit-pitscout/%d", team), map[string]any{
		"username":   scout(rng),
		"drivetrain": "swerve",
		"scoringPositions": map[string]any{
			"l1": rng.Float64() < 0.5,
			"l4": rng.Float64() < 0.5,
		},
		"climb": "deep",
	}, http.StatusOK)
}

func toggleButton(rng *rand.Rand) result {
	path := fmt.Sprintf("/matchscout/%d/%d/button", rng.Intn(numTeams)+1, rng.Intn(numMatches)+1)
	return send(http.MethodPost, "POST /button", path, map[string]any{"username": scout(rng)},
		http.StatusOK, http.StatusForbidden)
}

func buttonStatus(rng *rand.Rand) result {
	path := fmt.Sprintf("/matchscout/%d/%d/button", rng.Intn(numTeams)+1, rng.Intn(numMatches)+1)
	return get("GET /button", path)
}

func matchStatus(rng *rand.Rand) result {
	return get("GET /match/{matchId}/status", fmt.Sprintf("/matchscout/match/%d/status", rng.Intn(numMatches)+1))
}

func scout(rng *rand.Rand) string {
	return fmt.Sprintf("scout%d", rng.Intn(numScouts))
}

func get(endpoint, path string, alsoOK ...int) result {
	return send(http.MethodGet, endpoint, path, nil, append(alsoOK, http.StatusOK)...)
}

func send(method, endpoint, path string, body map[string]any, okStatuses ...int) result {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return result{endpoint: endpoint, err: true}
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, *baseURL+path, reader)
	if err != nil {
		return result{endpoint: endpoint, err: true}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	drain(resp)
	return result{endpoint, resp.StatusCode, lat, !slices.Contains(okStatuses, resp.StatusCode)}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-30s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 96))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		slices.Sort(s.latencies)

		fmt.Printf("  %-30s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 96))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
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
