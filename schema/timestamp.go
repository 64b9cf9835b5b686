package schema

import (
	"errors"
	"time"

	json "github.com/goccy/go-json"
)

// Timestamp mirrors the protobuf-style {seconds, nanos} pair the backend emits.
// The wire form may also be an RFC 3339 string; both decode into Timestamp and
// it always encodes as the object form.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// TimestampOf converts t into a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time returns the timestamp as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// IsZero reports whether ts is the Unix epoch.
func (ts Timestamp) IsZero() bool {
	return ts.Seconds == 0 && ts.Nanos == 0
}

// UnmarshalJSON accepts either the object form or an RFC 3339 string.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		*ts = TimestampOf(t)
		return nil
	}

	var obj struct {
		Seconds *int64 `json:"seconds"`
		Nanos   int32  `json:"nanos"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Seconds == nil {
		return errors.New("schema: timestamp missing seconds")
	}
	*ts = Timestamp{Seconds: *obj.Seconds, Nanos: obj.Nanos}
	return nil
}
