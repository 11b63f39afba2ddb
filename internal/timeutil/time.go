package timeutil

import (
	"strconv"
	"time"

	gojson "github.com/goccy/go-json"
)

// Time marshals to ISO-8601 and accepts either an ISO-8601 string or a Unix
// timestamp in seconds when unmarshaling.
type Time time.Time

func Now() Time {
	return Time(time.Now())
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == "{}" {
		return nil
	}
	if s[0] == '"' {
		tt, err := time.Parse(`"`+time.RFC3339+`"`, s)
		if err != nil {
			return err
		}
		*t = Time(tt)
	} else {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*t = Time(time.Unix(i, 0))
	}
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(time.Time(t))
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) Before(u Time) bool {
	return time.Time(t).Before(time.Time(u))
}

func (t Time) Sub(u Time) time.Duration {
	return time.Time(t).Sub(time.Time(u))
}
