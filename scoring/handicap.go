package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ZeMendes2393/sailscore/apperr"
)

const secondsPerDay = 24 * 60 * 60

// ParseClock turns "HH:MM:SS", "MM:SS" or plain seconds (each with an
// optional fraction) into seconds.
func ParseClock(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time")
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("time %q has too many fields", s)
	}

	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		if !plainNumber(p, last) {
			return 0, fmt.Errorf("time %q: field %d is not a number", s, i+1)
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("time %q: %w", s, err)
		}
		if v < 0 || (len(parts) > 1 && i > 0 && v >= 60) {
			return 0, fmt.Errorf("time %q: field %d out of range", s, i+1)
		}
		total = total*60 + v
	}
	return total, nil
}

// plainNumber accepts ASCII digits with, when fraction is set, one optional
// ".digits" tail. Signs, exponents, NaN and Inf are refused.
func plainNumber(p string, fraction bool) bool {
	whole, frac, dotted := strings.Cut(p, ".")
	if dotted && (!fraction || frac == "") {
		return false
	}
	return allDigits(whole) && (!dotted || allDigits(frac))
}

func allDigits(p string) bool {
	if p == "" {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatDelta renders a time gap as "+HH:MM:SS", rounded to the second.
func FormatDelta(seconds float64) string {
	n := int64(math.Round(seconds))
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("+%02d:%02d:%02d", n/3600, (n/60)%60, n%60)
}

// handicapTimes fills ElapsedSeconds/CorrectedSeconds for one row.
//
// Elapsed comes from the elapsed string, else finish minus race start.
// Corrected comes from the corrected string, else elapsed times the boat's
// rating (time-on-time), else elapsed.
func handicapTimes(r *Row, start string, rating float64) error {
	invalid := func(field string, err error) error {
		return apperr.Validation(apperr.CodeInvalidTimeFormat, "boat %s: invalid %s: %v", r.Boat, field, err).
			With("boat", r.Boat.String())
	}

	if r.ElapsedTime != "" {
		v, err := ParseClock(r.ElapsedTime)
		if err != nil {
			return invalid("elapsed time", err)
		}
		r.ElapsedSeconds = &v
	} else if r.FinishTime != "" && start != "" {
		f, err := ParseClock(r.FinishTime)
		if err != nil {
			return invalid("finish time", err)
		}
		s, err := ParseClock(start)
		if err != nil {
			return invalid("race start time", err)
		}
		v := f - s
		if v < 0 {
			v += secondsPerDay
		}
		r.ElapsedSeconds = &v
	}

	if r.CorrectedTime != "" {
		v, err := ParseClock(r.CorrectedTime)
		if err != nil {
			return invalid("corrected time", err)
		}
		r.CorrectedSeconds = &v
	} else if r.ElapsedSeconds != nil {
		v := *r.ElapsedSeconds
		if rating > 0 {
			v = math.Round(v*rating*10) / 10
		}
		r.CorrectedSeconds = &v
	}
	return nil
}
