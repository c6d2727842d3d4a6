package wire

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// durationPattern matches the ISO 8601 duration subset the protocol uses:
// an optional sign, then P with year/month/week/day components and an
// optional T section with hour/minute/second components. Seconds may
// carry a fractional part.
var durationPattern = regexp.MustCompile(
	`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// Duration is an ISO 8601 duration. Calendar components (years, months)
// have no fixed length in seconds, so conversion to a time.Duration is
// anchored at a concrete instant via ToTimeDurationAt.
type Duration struct {
	negative bool
	years    int
	months   int
	days     int
	hours    int
	minutes  int
	seconds  float64
}

// ParseDuration parses an ISO 8601 duration string such as "PT1H" or
// "P3DT2H30M". The bare designator "P" with no components is rejected.
func ParseDuration(s string) (Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, fmt.Errorf("invalid ISO 8601 duration %q", s)
	}
	hasComponent := false
	for _, g := range m[2:] {
		if g != "" {
			hasComponent = true
			break
		}
	}
	if !hasComponent {
		return Duration{}, fmt.Errorf("invalid ISO 8601 duration %q: no components", s)
	}

	var d Duration
	d.negative = m[1] == "-"
	d.years = atoiGroup(m[2])
	d.months = atoiGroup(m[3])
	d.days = atoiGroup(m[4])*7 + atoiGroup(m[5])
	d.hours = atoiGroup(m[6])
	d.minutes = atoiGroup(m[7])
	if m[8] != "" {
		sec, err := strconv.ParseFloat(m[8], 64)
		if err != nil {
			return Duration{}, fmt.Errorf("invalid seconds in duration %q: %w", s, err)
		}
		d.seconds = sec
	}
	return d, nil
}

func atoiGroup(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// MustParseDuration parses s and panics on error. For use with constants.
func MustParseDuration(s string) Duration {
	d, err := ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Hours returns a duration of n whole hours.
func Hours(n int) Duration {
	return Duration{hours: n}
}

// Minutes returns a duration of n whole minutes.
func Minutes(n int) Duration {
	return Duration{minutes: n}
}

// Seconds returns a duration of n seconds.
func Seconds(n float64) Duration {
	return Duration{seconds: n}
}

// MaxDuration is the protocol sentinel for "effectively forever". An
// interval with this duration never ends.
var MaxDuration = Duration{years: 9999}

// IsZero reports whether every component of the duration is zero.
func (d Duration) IsZero() bool {
	return d.years == 0 && d.months == 0 && d.days == 0 &&
		d.hours == 0 && d.minutes == 0 && d.seconds == 0
}

// IsMax reports whether the duration is the open-ended sentinel or larger.
func (d Duration) IsMax() bool {
	return !d.negative && d.years >= 9999
}

// ToTimeDurationAt converts the duration to an exact time.Duration
// anchored at start. Years, months and days are resolved against the
// calendar at start, so "P1M" is 28 to 31 days depending on the month.
func (d Duration) ToTimeDurationAt(start time.Time) time.Duration {
	sign := 1
	if d.negative {
		sign = -1
	}
	end := start.AddDate(sign*d.years, sign*d.months, sign*d.days)
	end = end.Add(time.Duration(sign) * (time.Duration(d.hours)*time.Hour +
		time.Duration(d.minutes)*time.Minute +
		time.Duration(math.Round(d.seconds*float64(time.Second)))))
	return end.Sub(start)
}

// String renders the duration in canonical ISO 8601 form.
func (d Duration) String() string {
	if d.IsZero() {
		return "PT0S"
	}
	var b strings.Builder
	if d.negative {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if d.years > 0 {
		fmt.Fprintf(&b, "%dY", d.years)
	}
	if d.months > 0 {
		fmt.Fprintf(&b, "%dM", d.months)
	}
	if d.days > 0 {
		fmt.Fprintf(&b, "%dD", d.days)
	}
	if d.hours > 0 || d.minutes > 0 || d.seconds > 0 {
		b.WriteByte('T')
		if d.hours > 0 {
			fmt.Fprintf(&b, "%dH", d.hours)
		}
		if d.minutes > 0 {
			fmt.Fprintf(&b, "%dM", d.minutes)
		}
		if d.seconds > 0 {
			b.WriteString(strconv.FormatFloat(d.seconds, 'f', -1, 64))
			b.WriteByte('S')
		}
	}
	return b.String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
