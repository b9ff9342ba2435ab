package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterGetter is the slice of the SSM client used to resolve secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// NewSSMClient builds an SSM client from the default AWS credential chain.
func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// ResolveSecret returns the value of envKey, unless ssmKey names an SSM
// parameter, in which case the decrypted parameter value wins. fallbackKeys
// are consulted in order when envKey is empty.
func ResolveSecret(ctx context.Context, c map[string]string, client ParameterGetter, envKey, ssmKey string, fallbackKeys ...string) (string, error) {
	if name := GetString(c, ssmKey, ""); name != "" && client != nil {
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(name),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return "", fmt.Errorf("get ssm parameter %s: %w", name, err)
		}
		if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
			return "", fmt.Errorf("ssm parameter %s is empty", name)
		}
		log.Info().Str("parameter", name).Msg("Resolved secret from SSM")
		return aws.ToString(out.Parameter.Value), nil
	}

	if value := GetString(c, envKey, ""); value != "" {
		return value, nil
	}
	for _, key := range fallbackKeys {
		if value := GetString(c, key, ""); value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("%s is not set", envKey)
}
