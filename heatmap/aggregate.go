package heatmap

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/stsysd/bathtiles/model"
)

// SubmissionField is the payload field carrying the serialized calendar.
const SubmissionField = "submissionCalendar"

// countLimit bounds a single count to what a float64 holds exactly.
const countLimit = 1 << 53

// RawSubmissionMap maps decimal Unix epoch-seconds strings to raw JSON counts.
type RawSubmissionMap map[string]json.RawMessage

// CountTable maps a day to its count. Days without data are absent.
type CountTable map[model.DayKey]int

// Stats summarizes a CountTable.
type Stats struct {
	StartDate model.DayKey `json:"start_date"`
	MaxCount  int          `json:"max_count"`
}

// Table is the derived state of one calendar. It is replaced as a whole.
type Table struct {
	Counts CountTable `json:"counts"`
	Stats  Stats      `json:"stats"`
}

// Count returns the count of key, 0 when absent.
func (t *Table) Count(key model.DayKey) int {
	return t.Counts[key]
}

// MergePolicy decides what happens when two timestamps fall on the same day.
type MergePolicy int

const (
	// MergeOverwrite keeps the count of the latest timestamp of the day.
	MergeOverwrite MergePolicy = iota
	// MergeSum adds the counts of the day.
	MergeSum
	// MergeReject fails the aggregation.
	MergeReject
)

func (p MergePolicy) String() string {
	switch p {
	case MergeSum:
		return "sum"
	case MergeReject:
		return "reject"
	default:
		return "overwrite"
	}
}

// ParseMergePolicy parses "overwrite", "sum" or "reject". Empty means overwrite.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite":
		return MergeOverwrite, nil
	case "sum":
		return MergeSum, nil
	case "reject":
		return MergeReject, nil
	}
	return MergeOverwrite, model.NewInvalidConfigurationError("merge", fmt.Sprintf("unknown merge policy %q", s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *MergePolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseMergePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p MergePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// DecodePayload extracts the submission map from a payload such as
// {"submissionCalendar": "{\"1609459200\":3}"}. The field may also hold the
// mapping inline as an object. An empty payload, a missing or null field and
// an empty string all decode to a nil map.
func DecodePayload(data []byte) (RawSubmissionMap, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, model.NewMalformedInputError("", "payload is not a JSON object", err)
	}

	field := bytes.TrimSpace(outer[SubmissionField])
	if len(field) == 0 || bytes.Equal(field, []byte("null")) {
		return nil, nil
	}

	switch field[0] {
	case '"':
		var serialized string
		if err := json.Unmarshal(field, &serialized); err != nil {
			return nil, model.NewMalformedInputError("", SubmissionField+" is not a valid string", err)
		}
		if strings.TrimSpace(serialized) == "" {
			return nil, nil
		}
		field = []byte(serialized)
	case '{':
	default:
		return nil, model.NewMalformedInputError("", SubmissionField+" must be a string or an object", nil)
	}

	var raw RawSubmissionMap
	if err := json.Unmarshal(field, &raw); err != nil {
		return nil, model.NewMalformedInputError("", SubmissionField+" is not a JSON object", err)
	}
	return raw, nil
}

// EncodePayload builds a payload in the serialized-string form from epoch
// seconds -> count.
func EncodePayload(counts map[int64]int) ([]byte, error) {
	inner := make(map[string]int, len(counts))
	for ts, c := range counts {
		inner[strconv.FormatInt(ts, 10)] = c
	}
	serialized, err := json.Marshal(inner)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission calendar: %w", err)
	}
	return json.Marshal(map[string]string{SubmissionField: string(serialized)})
}

type submission struct {
	key   string
	epoch int64
	count int
}

// Aggregate derives the per-day table and its stats from raw. Entries are
// applied in ascending timestamp order; same-day collisions follow policy.
// MaxCount is the largest count ever written, so an overwritten count still
// sets the top of the color scale.
// A nil or empty raw map yields an empty table starting today.
func Aggregate(raw RawSubmissionMap, policy MergePolicy, today model.DayKey) (*Table, error) {
	table := &Table{
		Counts: CountTable{},
		Stats:  Stats{StartDate: today},
	}
	if len(raw) == 0 {
		return table, nil
	}

	subs := make([]submission, 0, len(raw))
	for key, value := range raw {
		epoch, err := parseEpoch(key)
		if err != nil {
			return nil, err
		}
		count, err := parseCount(key, value)
		if err != nil {
			return nil, err
		}
		subs = append(subs, submission{key: key, epoch: epoch, count: count})
	}
	slices.SortFunc(subs, func(a, b submission) int {
		return cmp.Compare(a.epoch, b.epoch)
	})

	for _, s := range subs {
		day := model.EncodeDayKey(s.epoch)
		prev, seen := table.Counts[day]
		switch {
		case !seen:
			table.Counts[day] = s.count
		case policy == MergeSum:
			table.Counts[day] = prev + s.count
		case policy == MergeReject:
			return nil, model.NewMalformedInputError(s.key, fmt.Sprintf("another timestamp already counted for %s", day), nil)
		default:
			table.Counts[day] = s.count
		}
		// running max over every write, overwritten ones included
		table.Stats.MaxCount = max(table.Stats.MaxCount, table.Counts[day])
	}

	table.Stats.StartDate = model.EncodeDayKey(subs[0].epoch)
	return table, nil
}

func parseEpoch(key string) (int64, error) {
	epoch, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, model.NewMalformedInputError(key, "timestamp is not decimal epoch seconds", err)
	}
	// DayKeyの辞書順を保つため4桁の年に限定
	if y := model.EncodeDayKey(epoch).Year(); y < 1 || y > 9999 {
		return 0, model.NewMalformedInputError(key, "timestamp is out of range", nil)
	}
	return epoch, nil
}

func parseCount(key string, value json.RawMessage) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, model.NewMalformedInputError(key, "count is not valid JSON", err)
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, model.NewMalformedInputError(key, "count is not a number", nil)
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, model.NewMalformedInputError(key, "count is not a finite number", err)
	}
	if f < 0 {
		return 0, model.NewMalformedInputError(key, "count must not be negative", nil)
	}
	if f != math.Trunc(f) {
		return 0, model.NewMalformedInputError(key, "count must be an integer", nil)
	}
	if f > countLimit {
		return 0, model.NewMalformedInputError(key, "count is too large", nil)
	}
	return int(f), nil
}
