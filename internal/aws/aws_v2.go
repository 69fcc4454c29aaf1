// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Settings overrides parts of the default credential chain. Blank fields
// inherit it (AWS_PROFILE, ~/.aws/config, IMDS and so on).
type Settings struct {
	Profile string
	Region  string
	// Endpoint targets an S3-compatible service (MinIO, LocalStack) with
	// path-style addressing.
	Endpoint string
}

// loadOptions turns s into config loader options.
func (s Settings) loadOptions() []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if s.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.Profile))
	}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	return opts
}

// s3Options applies the endpoint override, if any.
func (s Settings) s3Options(o *s3v2.Options) {
	if s.Endpoint == "" {
		return
	}
	o.BaseEndpoint = awsv2.String(s.Endpoint)
	o.UsePathStyle = true
}

// NewS3Client loads the SDK config for s and returns an S3 client.
func NewS3Client(ctx context.Context, s Settings) (*s3v2.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, s.loadOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.WithFields(log.Fields{
		"region":   cfg.Region,
		"endpoint": s.Endpoint,
	}).Debug("s3 client")
	return s3v2.NewFromConfig(cfg, s.s3Options), nil
}
