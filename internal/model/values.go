package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Num is a float that also decodes from numeric strings such as "1,200".
// Unparseable values decode as zero instead of failing the whole record.
type Num float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Num) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, _ := parseLooseFloat(s)
		*n = Num(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*n = 0
		return nil //nolint:nilerr // tolerant decode
	}
	*n = Num(v)
	return nil
}

// Count is a shipment count that the model may send as a number or a string
// ("~120", "Not available"). The raw text is kept; "" means not yet loaded.
type Count string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Count(s)
	default:
		*c = Count(string(data))
	}
	return nil
}

// MarshalJSON writes counts that are already valid JSON numbers as numbers
// and everything else ("+120", "007", "NaN", "~40") as strings.
func (c Count) MarshalJSON() ([]byte, error) {
	raw := []byte(c)
	if v, err := strconv.ParseFloat(string(c), 64); err == nil && finite(v) && json.Valid(raw) {
		return raw, nil
	}
	return json.Marshal(string(c))
}

// IsEmpty reports whether the count is still the loading sentinel.
func (c Count) IsEmpty() bool { return strings.TrimSpace(string(c)) == "" }

// Int returns the count as an integer when it is purely numeric.
func (c Count) Int() (int64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(c)), 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return int64(v), true
}

// ContactInfo is the structured contact block.
type ContactInfo struct {
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
}

// Contact holds either structured contact details or a free-text fallback
// when the model could only describe how to reach the company.
type Contact struct {
	Info *ContactInfo
	Text string
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Contact) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = Contact{}
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &c.Text)
	default:
		var info ContactInfo
		if err := json.Unmarshal(data, &info); err != nil {
			return err
		}
		c.Info = &info
		return nil
	}
}

// MarshalJSON keeps the wire shape the value was decoded from.
func (c Contact) MarshalJSON() ([]byte, error) {
	if c.Info != nil {
		return json.Marshal(c.Info)
	}
	return json.Marshal(c.Text)
}

// IsText reports whether only the free-text fallback is present.
func (c Contact) IsText() bool { return c.Info == nil }

func parseLooseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
