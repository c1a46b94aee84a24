// Command benchmark_parser turns `go test -bench` output into a
// markdown report, optionally comparing the run against a saved
// baseline.
//
// Usage:
//
//	go test -bench . -benchmem ./... | go run scripts/benchmark_parser.go
//	go run scripts/benchmark_parser.go -input new.txt -baseline old.txt -output report.md
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string // normalized, procs suffix stripped
	Group       string // benchmark function, e.g. "MatMul"
	Case        string // sub-benchmark path, e.g. "128x128"
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	baselineFile = flag.String("baseline", "", "Baseline benchmark output to compare against")
	outputFile   = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet        = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	results, err := readResults(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	var baseline map[string]BenchmarkResult
	if *baselineFile != "" {
		base, err := readResults(*baselineFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading baseline: %v\n", err)
			os.Exit(1)
		}
		baseline = make(map[string]BenchmarkResult, len(base))
		for _, r := range base {
			baseline[r.Name] = r
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Parsed %d baseline results\n", len(base))
		}
	}

	report := generateMarkdownReport(results, baseline)

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(report), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
		}
	} else {
		fmt.Fprint(os.Stdout, report)
	}
}

func readResults(path string) ([]BenchmarkResult, error) {
	if path == "" {
		return parseBenchmarks(bufio.NewScanner(os.Stdin)), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseBenchmarks(bufio.NewScanner(f)), nil
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	// Regex to parse benchmark output lines
	// BenchmarkMatMul/128x128-16    10000    12450 ns/op    4096 B/op    8 allocs/op
	benchmarkRegex := regexp.MustCompile(
		`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+(?:B|MB)/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
	)

	for scanner.Scan() {
		line := scanner.Text()

		// Unwrap test2json events (from -json flag)
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		group, subCase := splitName(matches[1])
		iterations, _ := strconv.Atoi(matches[2])
		nsPerOp, _ := strconv.ParseFloat(matches[3], 64)

		var bytesPerOp, allocsPerOp int64
		if matches[4] != "" {
			bytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			allocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		name := group
		if subCase != "" {
			name += "/" + subCase
		}
		results = append(results, BenchmarkResult{
			Name:        name,
			Group:       group,
			Case:        subCase,
			Iterations:  iterations,
			NsPerOp:     nsPerOp,
			BytesPerOp:  bytesPerOp,
			AllocsPerOp: allocsPerOp,
		})
	}

	return results
}

// splitName breaks a raw benchmark name into its function and
// sub-benchmark path, dropping the trailing GOMAXPROCS suffix so runs
// from differently sized machines still line up.
//
//	BenchmarkMatMul/128x128-16 -> ("MatMul", "128x128")
//	BenchmarkJITReplay-16      -> ("JITReplay", "")
func splitName(raw string) (group, subCase string) {
	parts := strings.Split(raw, "/")

	last := len(parts) - 1
	if dashIdx := strings.LastIndex(parts[last], "-"); dashIdx > 0 {
		parts[last] = parts[last][:dashIdx]
	}

	group = strings.TrimPrefix(parts[0], "Benchmark")
	group = strings.TrimPrefix(group, "_")
	if last == 0 {
		return group, ""
	}
	return group, strings.Join(parts[1:], "/")
}

func generateMarkdownReport(results []BenchmarkResult, baseline map[string]BenchmarkResult) string {
	var sb strings.Builder

	sb.WriteString("# Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	// Summary statistics
	faster, slower := 0, 0
	if baseline != nil {
		for _, r := range results {
			old, ok := baseline[r.Name]
			if !ok || old.NsPerOp == 0 {
				continue
			}
			switch {
			case r.NsPerOp < old.NsPerOp:
				faster++
			case r.NsPerOp > old.NsPerOp:
				slower++
			}
		}
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total benchmarks**: %d\n", len(results)))
	if baseline != nil {
		sb.WriteString(fmt.Sprintf("- **Faster than baseline**: %d\n", faster))
		sb.WriteString(fmt.Sprintf("- **Slower than baseline**: %d\n", slower))
	}
	sb.WriteString("\n")

	// Group results by benchmark function
	groups := make(map[string][]BenchmarkResult)
	var order []string
	for _, r := range results {
		if _, ok := groups[r.Group]; !ok {
			order = append(order, r.Group)
		}
		groups[r.Group] = append(groups[r.Group], r)
	}
	sort.Strings(order)

	sb.WriteString("## Detailed Results\n\n")
	for _, g := range order {
		rs := groups[g]
		sort.Slice(rs, func(i, j int) bool { return rs[i].Case < rs[j].Case })

		sb.WriteString(fmt.Sprintf("### %s\n\n", g))
		if baseline != nil {
			sb.WriteString("| Case | ns/op | baseline ns/op | delta | B/op | allocs/op |\n")
			sb.WriteString("|------|-------|----------------|-------|------|-----------|\n")
		} else {
			sb.WriteString("| Case | ns/op | B/op | allocs/op |\n")
			sb.WriteString("|------|-------|------|-----------|\n")
		}

		for _, r := range rs {
			c := r.Case
			if c == "" {
				c = "-"
			}
			if baseline != nil {
				oldNs, delta := "n/a", "n/a"
				if old, ok := baseline[r.Name]; ok && old.NsPerOp > 0 {
					oldNs = formatNumber(old.NsPerOp)
					delta = fmt.Sprintf("%+.1f%%", (r.NsPerOp-old.NsPerOp)/old.NsPerOp*100)
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %d |\n",
					c, formatNumber(r.NsPerOp), oldNs, delta,
					formatBytes(r.BytesPerOp), r.AllocsPerOp))
			} else {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n",
					c, formatNumber(r.NsPerOp), formatBytes(r.BytesPerOp), r.AllocsPerOp))
			}
		}
		sb.WriteString("\n")
	}

	// Notes
	sb.WriteString("## Notes\n\n")
	sb.WriteString("- **delta**: change in ns/op against the baseline run; negative is faster\n")
	sb.WriteString("- **B/op, allocs/op**: present only when the run used -benchmem\n")

	return sb.String()
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}

func formatBytes(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	} else if b >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}
