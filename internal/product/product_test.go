package product

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSM struct {
	values map[string]string
	err    error
	asked  string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.asked = aws.ToString(in.Name)
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[f.asked]
	if !ok {
		return nil, &types.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: aws.String(v)}}, nil
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", DefaultMinimumAssets},
		{"24", 24},
		{" 0 ", 0},
		{"-3", DefaultMinimumAssets},
		{"twenty", DefaultMinimumAssets},
	}
	for _, tt := range tests {
		t.Setenv(MinimumEnvVar, tt.value)
		if got := FromEnv().MinimumAssets(); got != tt.want {
			t.Errorf("FromEnv() with %q = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestLoadMinimumFromSSM(t *testing.T) {
	client := &fakeSSM{values: map[string]string{
		DefaultMinimumParam: "26",
		"/photobook/dev/bad": "lots",
	}}
	ctx := context.Background()

	got, err := LoadMinimumFromSSM(ctx, client, DefaultMinimumParam)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MinimumAssets() != 26 || client.asked != DefaultMinimumParam {
		t.Errorf("got %d from %s", got, client.asked)
	}

	if _, err := LoadMinimumFromSSM(ctx, client, "/photobook/dev/bad"); err == nil {
		t.Error("expected a parse error")
	}

	var notFound *types.ParameterNotFound
	if _, err := LoadMinimumFromSSM(ctx, client, "/missing"); !errors.As(err, &notFound) {
		t.Errorf("expected ParameterNotFound, got %v", err)
	}

	client.err = errors.New("throttled")
	if _, err := LoadMinimumFromSSM(ctx, client, DefaultMinimumParam); !errors.Is(err, client.err) {
		t.Errorf("expected wrapped client error, got %v", err)
	}
}
