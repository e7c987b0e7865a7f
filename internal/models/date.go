package models

import (
	"regexp"
	"strconv"
	"time"
)

// UnknownDateFormat is the display value for inputs that do not match the
// vendor embedded-epoch pattern. Callers treat it as valid output.
const UnknownDateFormat = "unknown date format"

// The vendor serializes dates as "/Date(<milliseconds><sign><HH><MM>)/":
// milliseconds since the Unix epoch plus a signed UTC offset.
var mcxDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-])(\d{2})(\d{2})\)/$`)

// FormatMcxDate renders a vendor date string as "YYYY-MM-DD HH:MM±HHMM" in
// the embedded offset. Unparseable input never fails; it yields
// UnknownDateFormat.
func FormatMcxDate(value string) string {
	m := mcxDatePattern.FindStringSubmatch(value)
	if m == nil {
		return UnknownDateFormat
	}

	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return UnknownDateFormat
	}

	hours, _ := strconv.Atoi(m[3])
	minutes, _ := strconv.Atoi(m[4])
	offset := hours*3600 + minutes*60
	if m[2] == "-" {
		offset = -offset
	}

	zone := time.FixedZone(m[2]+m[3]+m[4], offset)
	return time.UnixMilli(ms).In(zone).Format("2006-01-02 15:04-0700")
}
