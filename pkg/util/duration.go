package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration extends time.ParseDuration with a day suffix, so config
// values like "30d" work.
func ParseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
