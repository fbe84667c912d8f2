/*
 * Copyright 2024 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package exporter

import (
	"regexp"
	"strconv"
	"strings"
)

// Health state encoding shared by every health valued family.
const (
	StateOK       float64 = 0
	StateDegraded float64 = 1
	StateDead     float64 = 2
)

// unknownValue fills absent source fields so every sample of a family
// carries the full label set.
const unknownValue = "unknown"

var (
	okStatuses = map[string]struct{}{
		"ok":           {},
		"good":         {},
		"good, in use": {},
		"redundant":    {},
	}

	degradedStatuses = map[string]struct{}{
		"degraded":      {},
		"caution":       {},
		"warning":       {},
		"not redundant": {},
	}

	notInstalledStatuses = map[string]struct{}{
		"not installed": {},
		"not present":   {},
		"absent":        {},
		"n/a":           {},
	}

	leadingNumber  = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?`)
	trailingNumber = regexp.MustCompile(`([0-9]+)\s*$`)
)

// healthState maps a raw status string onto the three state encoding.
// Unrecognized strings land on Dead or Other, never dropped.
func healthState(status string) float64 {
	s := strings.ToLower(strings.TrimSpace(status))
	if _, ok := okStatuses[s]; ok {
		return StateOK
	}
	if _, ok := degradedStatuses[s]; ok {
		return StateDegraded
	}
	return StateDead
}

// installed reports whether a component is physically present. Samples
// for absent components are skipped instead of reporting Dead.
func installed(status string) bool {
	_, ok := notInstalledStatuses[strings.ToLower(strings.TrimSpace(status))]
	return !ok
}

// parseLeadingNumber extracts the numeric prefix of readings like
// "180 Watts" or "2.50".
func parseLeadingNumber(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numberToken returns the numeric prefix of a reading as a label value,
// "460 Watts" becomes "460". Falls back to unknown.
func numberToken(s string) string {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return unknownValue
	}
	return m
}

// indexFromLabel pulls the trailing ordinal out of firmware labels like
// "Power Supply 1" or "Proc 2".
func indexFromLabel(s string) string {
	m := trailingNumber.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return unknownValue
	}
	return m[1]
}

// orUnknown substitutes the unknown label value for empty fields.
func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return s
}

// sizeToGB normalizes a memory size to decimal gigabytes. The firmware
// reports the unit either as an attribute or inline, "8192 MB".
func sizeToGB(value, unit string) (float64, bool) {
	num, ok := parseLeadingNumber(value)
	if !ok {
		return 0, false
	}
	if unit == "" {
		if fields := strings.Fields(value); len(fields) > 1 {
			unit = fields[len(fields)-1]
		}
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "mb", "megabytes":
		num = num / 1024
	case "tb", "terabytes":
		num = num * 1024
	}
	return num, true
}

// thresholdCelsius parses a temperature threshold, mapping the N/A the
// firmware reports for sensors without one to -1.
func thresholdCelsius(value string) float64 {
	v, ok := parseLeadingNumber(value)
	if !ok {
		return -1
	}
	return v
}
