package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// UsageTimeLayout is the timestamp layout of usage records.
const UsageTimeLayout = "2006-01-02 15:04:05"

// Pricing holds the USD price of a single token
type Pricing struct {
	InputPerToken  float64
	OutputPerToken float64
}

// DefaultPricing is the gpt-4o-mini price list.
var DefaultPricing = Pricing{
	InputPerToken:  0.00000015,
	OutputPerToken: 0.0000006,
}

// Cost returns the price of a call with the given token counts.
func (p Pricing) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*p.InputPerToken + float64(outputTokens)*p.OutputPerToken
}

// UsageRecord is one line of the usage log
type UsageRecord struct {
	Model        string            `json:"model"`
	Time         string            `json:"time"`
	Prompts      map[string]string `json:"prompts"`
	Replies      string            `json:"replies"`
	TotalTokens  int               `json:"total_tokens"`
	InputTokens  int               `json:"input_tokens"`
	OutputTokens int               `json:"output_tokens"`
	TotalCost    float64           `json:"total_cost"`
}

// NewUsageRecord builds the usage record of a successful completion.
// Prompts are keyed prompt_1, prompt_2, ... in request order.
func NewUsageRecord(at time.Time, messages []Message, resp *Response, pricing Pricing) UsageRecord {
	prompts := make(map[string]string, len(messages))
	for i, m := range messages {
		prompts[fmt.Sprintf("prompt_%d", i+1)] = m.Content
	}
	return UsageRecord{
		Model:        resp.Metadata.Model,
		Time:         at.Format(UsageTimeLayout),
		Prompts:      prompts,
		Replies:      resp.Content,
		TotalTokens:  resp.Usage.TotalTokens,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalCost:    pricing.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens),
	}
}

// UsageSink receives one record per successful completion
type UsageSink interface {
	Record(ctx context.Context, record UsageRecord) error
}

// FileUsageLog appends usage records to a newline-delimited JSON file
type FileUsageLog struct {
	path string
	mu   sync.Mutex
}

// NewFileUsageLog returns a log writing to path. The parent directory is
// created on first write.
func NewFileUsageLog(path string) *FileUsageLog {
	return &FileUsageLog{path: path}
}

// Path returns the file the log appends to.
func (l *FileUsageLog) Path() string {
	return l.path
}

// Record appends one JSON object followed by a newline.
func (l *FileUsageLog) Record(_ context.Context, record UsageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create usage log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open usage log: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write usage log entry: %w", err)
	}
	return f.Close()
}

// ReadUsageLog reads every record of a usage log file. A missing file is an
// empty log.
func ReadUsageLog(path string) ([]UsageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open usage log: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeUsageLog(f)
}

// DecodeUsageLog parses newline-delimited usage records, skipping blank lines.
func DecodeUsageLog(r io.Reader) ([]UsageRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []UsageRecord
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec UsageRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("invalid usage record on line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usage log: %w", err)
	}
	return records, nil
}

// MultiSink fans a record out to several sinks and joins their errors.
type MultiSink []UsageSink

// Record writes the record to every sink.
func (m MultiSink) Record(ctx context.Context, record UsageRecord) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ModelUsage aggregates the records of one model
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	TotalCost    float64
}

// UsageSummary aggregates a usage log
type UsageSummary struct {
	Calls     int
	TotalCost float64
	ByModel   []ModelUsage
}

// SummarizeUsage totals records per model, sorted by model name.
func SummarizeUsage(records []UsageRecord) UsageSummary {
	byModel := make(map[string]*ModelUsage)
	var summary UsageSummary
	for _, r := range records {
		m, ok := byModel[r.Model]
		if !ok {
			m = &ModelUsage{Model: r.Model}
			byModel[r.Model] = m
		}
		m.Calls++
		m.InputTokens += r.InputTokens
		m.OutputTokens += r.OutputTokens
		m.TotalTokens += r.TotalTokens
		m.TotalCost += r.TotalCost

		summary.Calls++
		summary.TotalCost += r.TotalCost
	}

	summary.ByModel = make([]ModelUsage, 0, len(byModel))
	for _, m := range byModel {
		summary.ByModel = append(summary.ByModel, *m)
	}
	sort.Slice(summary.ByModel, func(i, j int) bool {
		return summary.ByModel[i].Model < summary.ByModel[j].Model
	})
	return summary
}
