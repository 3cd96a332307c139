package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rule allows Max requests per Window.
type Rule struct {
	Max    int
	Window time.Duration
}

func (r Rule) String() string {
	for _, u := range ruleUnits {
		if r.Window == u.d {
			return fmt.Sprintf("%d per %s", r.Max, u.name)
		}
	}
	return fmt.Sprintf("%d per %s", r.Max, r.Window)
}

var ruleUnits = []struct {
	name string
	d    time.Duration
}{
	{"second", time.Second},
	{"minute", time.Minute},
	{"hour", time.Hour},
	{"day", 24 * time.Hour},
}

// ParseRule parses "N per unit" or "N/unit" where unit is second, minute,
// hour or day (plural accepted).
func ParseRule(s string) (Rule, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	count, unit, ok := strings.Cut(s, "/")
	if !ok {
		count, unit, ok = strings.Cut(s, " per ")
	}
	if !ok {
		return Rule{}, fmt.Errorf("rate limit %q: want \"N per unit\"", s)
	}

	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n <= 0 {
		return Rule{}, fmt.Errorf("rate limit %q: count must be a positive integer", s)
	}

	unit = strings.TrimSuffix(strings.TrimSpace(unit), "s")
	for _, u := range ruleUnits {
		if unit == u.name {
			return Rule{Max: n, Window: u.d}, nil
		}
	}
	return Rule{}, fmt.Errorf("rate limit %q: unknown unit %q", s, unit)
}

func ParseRules(specs []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		r, err := ParseRule(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
