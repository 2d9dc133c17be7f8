package domain

import "strings"

// Service name lists are treated as ordered sets: order follows the first
// argument, duplicates are dropped, comparison is exact.

// Difference returns the elements of a that are not in b
func Difference(a, b []string) []string {
	out := make([]string, 0, len(a))
	for _, s := range a {
		if !ContainsService(b, s) && !ContainsService(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Union returns a followed by the elements of b not already in a
func Union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !ContainsService(out, s) {
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !ContainsService(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Intersect returns the elements of a that are also in b
func Intersect(a, b []string) []string {
	out := make([]string, 0)
	for _, s := range a {
		if ContainsService(b, s) && !ContainsService(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// ContainsService reports whether s is in list
func ContainsService(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// NormalizeServices trims names and drops empties and duplicates
func NormalizeServices(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" || ContainsService(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
