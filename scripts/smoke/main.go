package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type target struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	WantStatus int    `json:"want_status"`
	Critical   bool   `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type check struct {
	Target   target
	Status   int
	Envelope bool
	Error    error
	Duration time.Duration
}

// Smoke-checks a running instance: every target must answer with the
// expected status and, for API paths, a well-formed response envelope.
func main() {
	var (
		base        string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "smoke", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		checks   []check
		breaking int
		warnings int
	)

	for _, t := range targets {
		c := checkTarget(client, base, t)
		if c.Error != nil || c.Status != t.WantStatus || !c.Envelope {
			if t.Critical {
				breaking++
			} else {
				warnings++
			}
		}
		checks = append(checks, c)
	}

	printReport(checks)

	fmt.Printf("Failures: %d, Warnings: %d\n", breaking, warnings)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func checkTarget(client *http.Client, base string, tgt target) check {
	c := check{Target: tgt, Envelope: true}

	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(base, "/") + path

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		c.Error = err
		return c
	}
	start := time.Now()
	resp, err := client.Do(req)
	c.Duration = time.Since(start)
	if err != nil {
		c.Error = fmt.Errorf("request failed: %w", err)
		return c
	}
	defer resp.Body.Close()

	c.Status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Error = fmt.Errorf("read body: %w", err)
		return c
	}
	if strings.HasPrefix(path, "/api/") {
		c.Envelope = wellFormedEnvelope(body, resp.StatusCode)
	}
	return c
}

// wellFormedEnvelope verifies the common response contract: successful
// responses carry "data", failures carry "error" with a code.
func wellFormedEnvelope(body []byte, status int) bool {
	var env struct {
		Data  json.RawMessage `json:"data"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return false
	}
	if status < 400 {
		return len(env.Data) > 0 && env.Error == nil
	}
	return env.Error != nil && env.Error.Code != ""
}

func printReport(results []check) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if res.Status != res.Target.WantStatus || !res.Envelope {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Status: %d (want %d, %s) | Envelope: %t | Critical: %t\n",
			res.Status, res.Target.WantStatus, res.Duration, res.Envelope, res.Target.Critical)
	}
}
