package gamma

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Float accepts JSON numbers and numeric strings; the gamma API mixes both.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	var num float64
	if err := json.Unmarshal(b, &num); err == nil {
		*f = Float(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		num, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return err
		}
		*f = Float(num)
		return nil
	}
	return fmt.Errorf("invalid number: %s", s)
}

// StringList accepts either a JSON array or a JSON-encoded string holding an
// array. outcomePrices and clobTokenIds arrive as the latter.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*l = nil
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*l = arr
		return nil
	}
	var inner string
	if err := json.Unmarshal(b, &inner); err == nil {
		inner = strings.TrimSpace(inner)
		if inner == "" {
			*l = nil
			return nil
		}
		if err := json.Unmarshal([]byte(inner), &arr); err != nil {
			return err
		}
		*l = arr
		return nil
	}
	return fmt.Errorf("invalid string list: %s", s)
}

// Floats parses every element of the list as a float, zeros on failure.
func (l StringList) Floats() []float64 {
	out := make([]float64, len(l))
	for i, s := range l {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			out[i] = v
		}
	}
	return out
}

type Market struct {
	ID            string     `json:"id"`
	ConditionID   string     `json:"conditionId"`
	Question      string     `json:"question"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	EndDate       *time.Time `json:"endDate"`
	Volume        Float      `json:"volume"`
	Liquidity     Float      `json:"liquidity"`
	Outcomes      StringList `json:"outcomes"`
	OutcomePrices StringList `json:"outcomePrices"`
	ClobTokenIDs  StringList `json:"clobTokenIds"`
	Active        bool       `json:"active"`
	Closed        bool       `json:"closed"`
}

type Event struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	EndDate   *time.Time `json:"endDate"`
	Volume    Float      `json:"volume"`
	Liquidity Float      `json:"liquidity"`
	Markets   []Market   `json:"markets"`
}

func parseEvents(body []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(body, &events); err == nil {
		return events, nil
	}
	var wrapped struct {
		Data []Event `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}

func parseMarkets(body []byte) ([]Market, error) {
	var markets []Market
	if err := json.Unmarshal(body, &markets); err == nil {
		return markets, nil
	}
	var wrapped struct {
		Data []Market `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}
