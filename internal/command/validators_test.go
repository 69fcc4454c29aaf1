// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator FlagValidatorType
		value     any
		wantErr   bool
	}{
		{name: "output text", validator: OutputValidator, value: "text"},
		{name: "output yaml", validator: OutputValidator, value: "yaml"},
		{name: "output raw", validator: OutputValidator, value: "raw", wantErr: true},
		{name: "driver s3", validator: CacheDriverValidator, value: "s3"},
		{name: "driver redis", validator: CacheDriverValidator, value: "redis", wantErr: true},
		{name: "hour 0", validator: HourValidator, value: 0},
		{name: "hour 23", validator: HourValidator, value: 23},
		{name: "hour 24", validator: HourValidator, value: 24, wantErr: true},
		{name: "hour -1", validator: HourValidator, value: -1, wantErr: true},
		{name: "non-negative 0", validator: NonNegativeValidator, value: 0},
		{name: "non-negative -1", validator: NonNegativeValidator, value: -1, wantErr: true},
		{name: "jammed", validator: JammedFlagValidator, value: "--titles", wantErr: true},
		{name: "not jammed", validator: JammedFlagValidator, value: "site.db"},
		{name: "blank", validator: NotBlankValidator, value: "  ", wantErr: true},
		{name: "wrong type", validator: HourValidator, value: "9", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
