// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

// Package crontab implements the cron expression dialect used by the DCM
// configuration document: five fields (minute hour dom month dow) or six
// fields with a leading seconds field.
//
// Semantics differ from the usual cron implementations in ways the device
// depends on: a day candidate must satisfy day-of-month AND day-of-week,
// `?` in the day fields is an alias for `*`, and Sunday is accepted as
// either 0 or 7.
package crontab

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadSyntax is returned (wrapped) for any malformed expression. The caller
// reaction is always the same: the corresponding job is not armed.
var ErrBadSyntax = errors.New("bad cron syntax")

// Expression is an immutable set of accepted instants, one bit-set per field.
// Months are stored 0-based.
type Expression struct {
	seconds     uint64 // 0..59
	minutes     uint64 // 0..59
	hours       uint64 // 0..23
	daysOfMonth uint64 // 1..31
	months      uint64 // 0..11
	daysOfWeek  uint64 // 0..6, Sunday is 0
}

type fieldSpec struct {
	name        string
	min, max    uint
	names       map[string]uint
	allowQuery  bool // `?` accepted as `*`
	inputOffset uint // subtracted from parsed values before storage
}

var monthNames = map[string]uint{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var dayNames = map[string]uint{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

var fieldSpecs = []fieldSpec{
	{name: "seconds", min: 0, max: 59},
	{name: "minutes", min: 0, max: 59},
	{name: "hours", min: 0, max: 23},
	{name: "day-of-month", min: 1, max: 31, allowQuery: true},
	{name: "month", min: 1, max: 12, names: monthNames, inputOffset: 1},
	{name: "day-of-week", min: 0, max: 7, names: dayNames, allowQuery: true},
}

// Parse parses a five- or six-field cron expression. A five-field form gets
// an implicit seconds field of {0}.
func Parse(expr string) (*Expression, error) {
	fields := strings.Fields(expr)
	switch len(fields) {
	case 5:
		fields = append([]string{"0"}, fields...)
	case 6:
	default:
		return nil, errors.Wrapf(ErrBadSyntax, "expected 5 or 6 fields, got %d in %q", len(fields), expr)
	}

	sets := make([]uint64, len(fieldSpecs))
	for i, spec := range fieldSpecs {
		set, err := parseField(fields[i], spec)
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}

	e := &Expression{
		seconds:     sets[0],
		minutes:     sets[1],
		hours:       sets[2],
		daysOfMonth: sets[3],
		months:      sets[4],
		daysOfWeek:  sets[5],
	}

	// Sunday given as 7 folds onto bit 0.
	if e.daysOfWeek&(1<<7) != 0 {
		e.daysOfWeek = (e.daysOfWeek &^ (1 << 7)) | 1
	}

	return e, nil
}

// parseField expands one field into its bit-set. Tokens are `*`, `N`, `N-M`,
// `*/k`, `a/k`, `a-b/k` and comma lists thereof; `?` is `*` where allowed.
func parseField(field string, spec fieldSpec) (uint64, error) {
	var set uint64
	for _, token := range strings.Split(field, ",") {
		bits, err := parseToken(token, spec)
		if err != nil {
			return 0, err
		}
		set |= bits
	}
	if set == 0 {
		return 0, errors.Wrapf(ErrBadSyntax, "empty %s field %q", spec.name, field)
	}
	return set, nil
}

func parseToken(token string, spec fieldSpec) (uint64, error) {
	if token == "?" {
		if !spec.allowQuery {
			return 0, errors.Wrapf(ErrBadSyntax, "`?` not allowed in %s field", spec.name)
		}
		token = "*"
	}

	rangeExpr := token
	step := uint(1)
	if slash := strings.IndexByte(token, '/'); slash >= 0 {
		rangeExpr = token[:slash]
		n, err := parseValue(token[slash+1:], fieldSpec{name: spec.name, min: 1, max: spec.max + 1})
		if err != nil {
			return 0, errors.Wrapf(ErrBadSyntax, "bad step in %s token %q", spec.name, token)
		}
		if n == 0 {
			return 0, errors.Wrapf(ErrBadSyntax, "zero step in %s token %q", spec.name, token)
		}
		step = n
	}

	var lo, hi uint
	switch {
	case rangeExpr == "*":
		lo, hi = spec.min, spec.max
	case strings.IndexByte(rangeExpr, '-') > 0:
		dash := strings.IndexByte(rangeExpr, '-')
		a, err := parseValue(rangeExpr[:dash], spec)
		if err != nil {
			return 0, err
		}
		b, err := parseValue(rangeExpr[dash+1:], spec)
		if err != nil {
			return 0, err
		}
		if a > b {
			return 0, errors.Wrapf(ErrBadSyntax, "reversed range %q in %s field", rangeExpr, spec.name)
		}
		lo, hi = a, b
	default:
		v, err := parseValue(rangeExpr, spec)
		if err != nil {
			return 0, err
		}
		lo = v
		hi = v
		if step > 1 {
			// `a/k` runs to the top of the field range.
			hi = spec.max
		}
	}

	var set uint64
	for v := lo; v <= hi; v += step {
		set |= 1 << (v - spec.inputOffset)
	}
	return set, nil
}

func parseValue(s string, spec fieldSpec) (uint, error) {
	if spec.names != nil {
		if v, ok := spec.names[strings.ToLower(s)]; ok {
			return v, nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrBadSyntax, "non-numeric value %q in %s field", s, spec.name)
	}
	v := uint(n)
	if v < spec.min || v > spec.max {
		return 0, errors.Wrapf(ErrBadSyntax, "value %d out of range [%d,%d] in %s field", v, spec.min, spec.max, spec.name)
	}
	return v, nil
}

func bit(set uint64, i uint) bool {
	return set&(1<<i) != 0
}
