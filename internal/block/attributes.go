// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package block

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Sentinel errors for boundary validation.
var (
	ErrInvalidAttributes = errors.New("invalid block attributes")
	ErrInvalidClassName  = errors.New("invalid class name")
	ErrInvalidHour       = errors.New("hour must be between 0 and 23")
	ErrInvalidMaxMatches = errors.New("max matches must not be negative")
	ErrInvalidItemID     = errors.New("item id must be a non-negative integer")
)

// ParseItemID reads a current-item id. Blank means 0, no current item.
func ParseItemID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidItemID, s)
	}
	return id, nil
}

// NormalizeClassName collapses runs of whitespace in a class list.
func NormalizeClassName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// classNameRe admits whitespace separated CSS class tokens.
var classNameRe = regexp.MustCompile(`^[A-Za-z0-9_\-\s]*$`)

// Attributes are the per-instance attributes saved with the block.
type Attributes struct {
	ClassName string
}

// ParseAttributes reads the host's attribute JSON. Empty input yields zero
// Attributes. Unknown keys are ignored.
func ParseAttributes(raw []byte) (Attributes, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Attributes{}, nil
	}

	if !gjson.ValidBytes(raw) {
		return Attributes{}, fmt.Errorf("%w: not valid JSON", ErrInvalidAttributes)
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Attributes{}, fmt.Errorf("%w: expected an object", ErrInvalidAttributes)
	}

	var a Attributes
	if cn := doc.Get("className"); cn.Exists() && cn.Type != gjson.Null {
		if cn.Type != gjson.String {
			return Attributes{}, fmt.Errorf("%w: className must be a string", ErrInvalidAttributes)
		}
		a.ClassName = cn.String()
	}

	a.ClassName = NormalizeClassName(a.ClassName)
	if err := a.Validate(); err != nil {
		return Attributes{}, err
	}

	return a, nil
}

// Validate rejects class names that are not plain class tokens.
func (a Attributes) Validate() error {
	if !classNameRe.MatchString(a.ClassName) {
		return fmt.Errorf("%w: %q", ErrInvalidClassName, a.ClassName)
	}
	return nil
}
