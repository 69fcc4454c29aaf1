// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"testing"

	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	tests := []struct {
		name      string
		settings  Settings
		wantOpts  int
		pathStyle bool
	}{
		{name: "defaults", settings: Settings{}},
		{name: "profile and region", settings: Settings{Profile: "dev", Region: "us-west-2"}, wantOpts: 2},
		{name: "endpoint", settings: Settings{Endpoint: "http://localhost:9000"}, pathStyle: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.settings.loadOptions(), tt.wantOpts)

			var o s3v2.Options
			tt.settings.s3Options(&o)
			assert.Equal(t, tt.pathStyle, o.UsePathStyle)
			if tt.pathStyle {
				require.NotNil(t, o.BaseEndpoint)
				assert.Equal(t, tt.settings.Endpoint, *o.BaseEndpoint)
			} else {
				assert.Nil(t, o.BaseEndpoint)
			}
		})
	}
}

func TestNewS3Client(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	client, err := NewS3Client(context.Background(), Settings{Region: "eu-west-1", Endpoint: "http://localhost:9000"})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", client.Options().Region)
	assert.True(t, client.Options().UsePathStyle)
}
