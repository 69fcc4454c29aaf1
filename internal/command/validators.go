// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/staranto/sitecounts/internal/cache"
	"github.com/staranto/sitecounts/internal/output"
)

var errMustBePositive = errors.New("must be greater than zero")

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if s, ok := value.(string); ok && strings.HasPrefix(s, "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func NotBlankValidator(value any) error {
	if s, ok := value.(string); !ok || strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}

func OutputValidator(value any) error {
	if s, ok := value.(string); !ok || !slices.Contains(output.Formats, s) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func CacheDriverValidator(value any) error {
	if s, ok := value.(string); !ok || !slices.Contains(cache.Drivers, s) {
		return fmt.Errorf("must be one of %v", cache.Drivers)
	}
	return nil
}

func HourValidator(value any) error {
	if h, ok := value.(int); !ok || h < 0 || h > 23 {
		return errors.New("must be an hour between 0 and 23")
	}
	return nil
}

func NonNegativeValidator(value any) error {
	if n, ok := value.(int); !ok || n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
