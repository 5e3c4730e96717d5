package lambdaboot

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/fpang/photobook-stories/internal/product"
)

type stubSSM struct {
	value string
	err   error
	calls int
	name  string
}

func (s *stubSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	s.calls++
	s.name = aws.ToString(in.Name)
	if s.err != nil {
		return nil, s.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(s.value)}}, nil
}

func TestLoadMinimumAssets(t *testing.T) {
	t.Run("env override skips SSM", func(t *testing.T) {
		t.Setenv(product.MinimumEnvVar, "30")
		client := &stubSSM{value: "40"}
		if got := LoadMinimumAssets(client); got != 30 || client.calls != 0 {
			t.Errorf("got %d with %d SSM calls", got, client.calls)
		}
	})

	t.Run("SSM parameter", func(t *testing.T) {
		t.Setenv(product.MinimumEnvVar, "")
		t.Setenv(EnvMinimumParam, "/photobook/dev/min-assets")
		client := &stubSSM{value: "24"}
		if got := LoadMinimumAssets(client); got != 24 {
			t.Errorf("got %d, want 24", got)
		}
		if client.name != "/photobook/dev/min-assets" {
			t.Errorf("read %q", client.name)
		}
	})

	t.Run("SSM failure falls back", func(t *testing.T) {
		t.Setenv(product.MinimumEnvVar, "")
		t.Setenv(EnvMinimumParam, "")
		client := &stubSSM{err: errors.New("access denied")}
		if got := LoadMinimumAssets(client); got != product.DefaultMinimumAssets {
			t.Errorf("got %d, want default", got)
		}
		if client.name != product.DefaultMinimumParam {
			t.Errorf("read %q, want the default parameter", client.name)
		}
	})
}
