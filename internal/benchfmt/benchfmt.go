// Package benchfmt converts `go test -bench` output into JSON summaries and
// compares two summaries for regressions.
package benchfmt

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Result is one benchmark line.
type Result struct {
	Name    string             `json:"name"`
	Metrics map[string]float64 `json:"metrics"`
}

// Summary is the full output of one benchmark run.
type Summary struct {
	Timestamp  string   `json:"timestamp"`
	CommitID   string   `json:"commit_id"`
	Branch     string   `json:"branch"`
	GoVersion  string   `json:"go_version"`
	SystemInfo string   `json:"system_info,omitempty"`
	Results    []Result `json:"results"`
}

var (
	benchLine = regexp.MustCompile(`^Benchmark(\S+?)(?:-\d+)?\s+(\d+)\s+(.*)$`)
	sysLine   = regexp.MustCompile(`^(goos|goarch|cpu):\s*(.+)$`)
)

// Parse reads benchmark output. Every "<value> <unit>" pair after the
// iteration count becomes a metric, so custom b.ReportMetric units are kept.
func Parse(r io.Reader) (Summary, error) {
	sum := Summary{
		Timestamp: time.Now().Format(time.RFC3339),
		GoVersion: runtime.Version(),
		CommitID:  "unknown",
		Branch:    "unknown",
	}
	var sys []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if m := sysLine.FindStringSubmatch(line); m != nil {
			sys = append(sys, m[1]+": "+m[2])
			continue
		}
		m := benchLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		ops, err := strconv.Atoi(m[2])
		if err != nil {
			return sum, errors.Wrapf(err, "benchfmt: iterations in %q", line)
		}
		res := Result{
			Name:    m[1],
			Metrics: map[string]float64{"operations": float64(ops)},
		}
		fields := strings.Fields(m[3])
		for i := 0; i+1 < len(fields); i += 2 {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return sum, errors.Wrapf(err, "benchfmt: metric in %q", line)
			}
			res.Metrics[metricName(fields[i+1])] = v
		}
		if ns, ok := res.Metrics["ns_per_op"]; ok && ns > 0 {
			res.Metrics["ops_per_sec"] = 1e9 / ns
		}
		sum.Results = append(sum.Results, res)
	}
	if err := sc.Err(); err != nil {
		return sum, errors.Wrap(err, "benchfmt: read")
	}
	sum.SystemInfo = strings.Join(sys, " ")
	return sum, nil
}

// metricName turns a unit such as "ns/op" or "probes/op" into a JSON key.
func metricName(unit string) string {
	return strings.NewReplacer("/", "_per_", "-", "_").Replace(unit)
}

// Load reads a summary written by Save.
func Load(path string) (Summary, error) {
	var sum Summary
	data, err := os.ReadFile(path)
	if err != nil {
		return sum, errors.Wrap(err, "benchfmt: read summary")
	}
	if err := json.Unmarshal(data, &sum); err != nil {
		return sum, errors.Wrapf(err, "benchfmt: parse %s", path)
	}
	return sum, nil
}

// Save writes sum as indented JSON.
func Save(path string, sum Summary) error {
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return errors.Wrap(err, "benchfmt: marshal summary")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "benchfmt: write summary")
}

// MetricComparison is the change of one metric between two runs.
type MetricComparison struct {
	Name          string  `json:"name"`
	BaseValue     float64 `json:"base_value"`
	CurrentValue  float64 `json:"current_value"`
	PercentChange float64 `json:"percent_change"`
	IsRegression  bool    `json:"is_regression"`
	IsSignificant bool    `json:"is_significant"`
}

// Comparison collects the metric changes of one benchmark.
type Comparison struct {
	Name           string             `json:"name"`
	Metrics        []MetricComparison `json:"metrics"`
	HasRegressions bool               `json:"has_regressions"`
	Score          float64            `json:"score"`
}

// Compare matches benchmarks by name and reports the percent change of
// every metric present in both runs. A change is significant when its
// magnitude reaches threshold percent. Results are ordered with
// regressions first, then by ascending score.
func Compare(base, current Summary, threshold float64) []Comparison {
	baseByName := make(map[string]Result, len(base.Results))
	for _, r := range base.Results {
		baseByName[r.Name] = r
	}

	var out []Comparison
	for _, cur := range current.Results {
		old, ok := baseByName[cur.Name]
		if !ok {
			continue
		}
		c := Comparison{Name: cur.Name}

		names := make([]string, 0, len(cur.Metrics))
		for name := range cur.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		total := 0.0
		for _, name := range names {
			if name == "operations" {
				continue
			}
			baseValue, ok := old.Metrics[name]
			if !ok {
				continue
			}
			curValue := cur.Metrics[name]
			change := 0.0
			if baseValue != 0 {
				change = (curValue - baseValue) / baseValue * 100
			}
			regression := change > 0
			if higherIsBetter(name) {
				regression = change < 0
			}
			significant := abs(change) >= threshold
			if regression && significant {
				c.HasRegressions = true
			}
			if regression {
				total -= abs(change)
			} else {
				total += abs(change)
			}
			c.Metrics = append(c.Metrics, MetricComparison{
				Name:          name,
				BaseValue:     baseValue,
				CurrentValue:  curValue,
				PercentChange: change,
				IsRegression:  regression,
				IsSignificant: significant,
			})
		}
		if len(c.Metrics) > 0 {
			c.Score = total / float64(len(c.Metrics))
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HasRegressions != out[j].HasRegressions {
			return out[i].HasRegressions
		}
		return out[i].Score < out[j].Score
	})
	return out
}

// higherIsBetter reports whether an increase of metric is an improvement.
// Everything else (ns/op, B/op, probes) is better when lower.
func higherIsBetter(metric string) bool {
	return strings.HasSuffix(metric, "_per_sec") ||
		strings.HasSuffix(metric, "_per_s") ||
		strings.HasSuffix(metric, "_rate") ||
		strings.HasPrefix(metric, "ops")
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
