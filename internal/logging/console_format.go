package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Keys hidden from console output above debug level.
var debugOnlyKeys = map[string]bool{
	FieldCorrelationID: true,
	"request_url":      true,
	"response_bytes":   true,
	"page_count":       true,
	"tmp_dir":          true,
}

func isDebugOnlyKey(key string) bool {
	if debugOnlyKeys[key] {
		return true
	}
	return strings.HasSuffix(key, "_path") && key != "source_path"
}

var fieldLabels = map[string]string{
	FieldAlert:       "Alert",
	FieldEventType:   "Event",
	FieldErrorHint:   "Hint",
	FieldImpact:      "Impact",
	FieldStatus:      "Row",
	"http_status":    "HTTP",
	"doi":            "DOI",
	"isbn":           "ISBN",
	"parent_id":      "Parent",
	"stage_duration": "Duration",
}

func displayLabel(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

// formatField renders one console field. Row statuses print upper-case so
// they stand out next to free-text messages.
func formatField(key string, v slog.Value) string {
	if key == FieldStatus {
		return strings.ToUpper(attrString(v))
	}
	return formatValue(v)
}

func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return formatValue(v)
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		d := v.Duration()
		if d < time.Second {
			return d.Round(time.Millisecond).String()
		}
		return d.Round(100 * time.Millisecond).String()
	case slog.KindTime:
		return v.Time().In(time.Local).Format(logTimestampLayout)
	default:
		s := v.String()
		if k := v.Kind(); k == slog.KindString || k == slog.KindAny {
			s = attrString(v)
		}
		if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r < ' ' || r == '"' }) {
			return strconv.Quote(s)
		}
		return s
	}
}
