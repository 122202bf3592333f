// Package workspace inspects the working directory for structured data
// files and produces lightweight textual summaries for the prompt.
package workspace

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prudhvi1709/smart-cli/internal/types"
)

const (
	maxSummaries  = 5
	maxSampleRows = 3
	maxRowScan    = 10000
	maxSampleLen  = 400
)

var formatByExt = map[string]string{
	".csv":    "csv",
	".tsv":    "tsv",
	".json":   "json",
	".jsonl":  "jsonl",
	".ndjson": "jsonl",
	".xlsx":   "xlsx",
	".xls":    "xlsx",
}

// Probe summarizes structured files relevant to a query. Files named in
// the query text are summarized first; remaining slots are filled with
// structured files found in dir. Summaries are recomputed fresh each
// turn and never cached, since a turn may reference a file that changed.
func Probe(dir, query string) []types.FileSummary {
	var summaries []types.FileSummary
	seen := make(map[string]bool)

	for _, path := range referencedFiles(dir, query) {
		if len(summaries) >= maxSummaries {
			return summaries
		}
		if s, ok := Summarize(path); ok && !seen[s.Path] {
			seen[s.Path] = true
			summaries = append(summaries, s)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return summaries
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if len(summaries) >= maxSummaries {
			break
		}
		if _, known := formatByExt[strings.ToLower(filepath.Ext(name))]; !known {
			continue
		}
		path := filepath.Join(dir, name)
		if s, ok := Summarize(path); ok && !seen[s.Path] {
			seen[s.Path] = true
			summaries = append(summaries, s)
		}
	}

	return summaries
}

// referencedFiles extracts query tokens that name existing files
func referencedFiles(dir, query string) []string {
	var paths []string
	for _, token := range strings.Fields(query) {
		token = strings.Trim(token, `"'.,;:!?()`)
		if token == "" || !strings.Contains(token, ".") {
			continue
		}
		candidate := token
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, candidate)
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			paths = append(paths, candidate)
		}
	}
	return paths
}

// Summarize produces a FileSummary for one file, when its format is
// recognized
func Summarize(path string) (types.FileSummary, bool) {
	format, ok := formatByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return types.FileSummary{}, false
	}

	summary := types.FileSummary{Path: path, Format: format}

	switch format {
	case "csv":
		return summarizeDelimited(summary, ',')
	case "tsv":
		return summarizeDelimited(summary, '\t')
	case "json":
		return summarizeJSON(summary)
	case "jsonl":
		return summarizeJSONL(summary)
	case "xlsx":
		info, err := os.Stat(path)
		if err != nil {
			return types.FileSummary{}, false
		}
		summary.ShapeDescription = fmt.Sprintf("binary workbook, %d bytes (contents not inspected)", info.Size())
		return summary, true
	}
	return types.FileSummary{}, false
}

func summarizeDelimited(summary types.FileSummary, sep rune) (types.FileSummary, bool) {
	f, err := os.Open(summary.Path)
	if err != nil {
		return types.FileSummary{}, false
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = sep
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return types.FileSummary{}, false
	}

	var sample []string
	rows := 0
	for rows < maxRowScan {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		rows++
		if len(sample) < maxSampleRows {
			sample = append(sample, strings.Join(record, string(sep)))
		}
	}

	shape := fmt.Sprintf("%d rows x %d columns (%s)", rows, len(header), strings.Join(header, ", "))
	if rows == maxRowScan {
		shape = fmt.Sprintf("%d+ rows x %d columns (%s)", rows, len(header), strings.Join(header, ", "))
	}
	summary.ShapeDescription = shape
	summary.Sample = clip(strings.Join(sample, "\n"))
	return summary, true
}

func summarizeJSON(summary types.FileSummary) (types.FileSummary, bool) {
	data, err := os.ReadFile(summary.Path)
	if err != nil {
		return types.FileSummary{}, false
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return types.FileSummary{}, false
	}

	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		summary.ShapeDescription = fmt.Sprintf("object with %d keys (%s)", len(keys), strings.Join(keys, ", "))
	case []any:
		summary.ShapeDescription = fmt.Sprintf("array of %d elements", len(v))
		if len(v) > 0 {
			if first, err := json.Marshal(v[0]); err == nil {
				summary.Sample = clip(string(first))
			}
		}
	default:
		summary.ShapeDescription = fmt.Sprintf("scalar %T value", v)
	}
	return summary, true
}

func summarizeJSONL(summary types.FileSummary) (types.FileSummary, bool) {
	f, err := os.Open(summary.Path)
	if err != nil {
		return types.FileSummary{}, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lines := 0
	first := ""
	for scanner.Scan() && lines < maxRowScan {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		lines++
	}

	summary.ShapeDescription = fmt.Sprintf("%d JSON lines", lines)
	summary.Sample = clip(first)
	return summary, true
}

func clip(s string) string {
	if len(s) <= maxSampleLen {
		return s
	}
	return s[:maxSampleLen] + "..."
}
