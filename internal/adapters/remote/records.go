package remote

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// flexFloat decodes a JSON number or a numeric string; the service stores
// coordinates as strings. Anything else decodes as invalid rather than failing,
// so one bad record cannot spoil the list it arrived in.
type flexFloat struct {
	value float64
	valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = flexFloat{}

	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	*f = flexFloat{value: v, valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
	return nil
}

// flexInt is a flexFloat that must hold a whole number. Invalid values decode as 0,
// which is never a valid id.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var f flexFloat
	_ = f.UnmarshalJSON(b)
	if !f.valid || f.value != math.Trunc(f.value) || math.Abs(f.value) > math.MaxInt32 {
		*n = 0
		return nil
	}
	*n = flexInt(f.value)
	return nil
}

// rawText keeps a field that may be either a JSON string or an arbitrary JSON value,
// as text. Strings are unquoted; anything else is kept verbatim.
type rawText string

func (r *rawText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = rawText(s)
		return nil
	}
	*r = rawText(b)
	return nil
}

type locationRecord struct {
	ID        flexInt   `json:"id"`
	Name      string    `json:"name"`
	Latitude  flexFloat `json:"latitude"`
	Longitude flexFloat `json:"longitude"`
}

type sampleRecord struct {
	ID            flexInt `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	RecordingData rawText `json:"recording_data"`
	Datetime      string  `json:"datetime"`
}

type sampleWrite struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	RecordingData string `json:"recording_data"`
}

type ratingRecord struct {
	ID       flexInt `json:"id"`
	SampleID flexInt `json:"sample_id"`
	Rating   flexInt `json:"rating"`
}

type ratingWrite struct {
	SampleID int `json:"sample_id"`
	Rating   int `json:"rating"`
}

type sampleLocationRecord struct {
	ID         flexInt `json:"id"`
	LocationID flexInt `json:"location_id"`
	SampleID   flexInt `json:"sample_id"`
}

type sampleLocationWrite struct {
	LocationID int `json:"location_id"`
	SampleID   int `json:"sample_id"`
}

// parseDatetime accepts the timestamp layouts the service has been seen to emit.
// Unparseable values yield the zero time.
func parseDatetime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
