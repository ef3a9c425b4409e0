package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// StringList is a sequence of strings that tolerates every representation the
// backing column may hold: a native Postgres text[] literal, JSON array text,
// or comma-separated text. Whatever is stored, consumers always see a plain
// slice of strings after a scan.
type StringList []string

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return l.parse(string(v))
	case string:
		return l.parse(v)
	default:
		return fmt.Errorf("stringlist: cannot scan %T", src)
	}
}

// Value implements driver.Valuer, writing a Postgres array literal.
func (l StringList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

// UnmarshalJSON accepts either a JSON array or a JSON string holding one of
// the textual representations.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("stringlist: unmarshal: %w", err)
	}

	return l.parse(text)
}

func (l *StringList) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*l = StringList{}
		return nil
	}

	// Postgres array literal, e.g. {cat,blue}.
	if strings.HasPrefix(s, "{") {
		var arr pq.StringArray
		if err := arr.Scan([]byte(s)); err == nil {
			*l = StringList(arr)
			return nil
		}
	}

	// JSON-encoded array text, e.g. ["cat","blue"].
	if strings.HasPrefix(s, "[") {
		var items []string
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			*l = items
			return nil
		}
	}

	// Fall back to comma-separated text.
	parts := strings.Split(s, ",")
	items := make(StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	*l = items

	return nil
}
