// Package product supplies the commerce parameters the story engine needs,
// chiefly the minimum number of photos a printed book requires.
package product

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// DefaultMinimumAssets is the page count of the smallest book.
const DefaultMinimumAssets = 20

// MinimumEnvVar overrides the minimum in CLIs and local runs.
const MinimumEnvVar = "STORIES_MIN_ASSETS"

// DefaultMinimumParam is the SSM parameter holding the minimum in production.
const DefaultMinimumParam = "/photobook/prod/min-assets"

// Static is a fixed minimum.
type Static int

// MinimumAssets returns the fixed minimum.
func (s Static) MinimumAssets() int { return int(s) }

// FromEnv reads STORIES_MIN_ASSETS, falling back to DefaultMinimumAssets
// when it is unset or not a non-negative integer.
func FromEnv() Static {
	raw := strings.TrimSpace(os.Getenv(MinimumEnvVar))
	if raw == "" {
		return DefaultMinimumAssets
	}
	n, err := parseMinimum(raw)
	if err != nil {
		log.Warn().Err(err).Str("envVar", MinimumEnvVar).Msg("Ignoring invalid minimum, using default")
		return DefaultMinimumAssets
	}
	return Static(n)
}

// ParameterGetter is the subset of the SSM client used here.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var _ ParameterGetter = (*ssm.Client)(nil)

// LoadMinimumFromSSM reads the minimum from an SSM String parameter.
func LoadMinimumFromSSM(ctx context.Context, client ParameterGetter, name string) (Static, error) {
	start := time.Now()
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(false),
	})
	if err != nil {
		return 0, fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return 0, fmt.Errorf("parameter %s has no value", name)
	}

	n, err := parseMinimum(*out.Parameter.Value)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	log.Debug().Str("param", name).Int("minimum", n).Dur("elapsed", time.Since(start)).Msg("Minimum assets loaded from SSM")
	return Static(n), nil
}

func parseMinimum(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse minimum %q: %w", raw, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("minimum %d is negative", n)
	}
	return n, nil
}
