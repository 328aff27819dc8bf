package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWS reads secrets from AWS Secrets Manager. The identifier is a secret name or ARN.
type AWS struct {
	api SecretsManagerAPI
}

// NewAWS creates a Secrets Manager backed Store using the default credential chain.
func NewAWS(ctx context.Context, region string) (*AWS, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &AWS{api: secretsmanager.NewFromConfig(cfg)}, nil
}

// NewAWSWithClient is used by tests to inject a fake client.
func NewAWSWithClient(api SecretsManagerAPI) *AWS {
	return &AWS{api: api}
}

// Get implements Store.
func (a *AWS) Get(ctx context.Context, id string) ([]byte, error) {
	out, err := a.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get secret value %s: %w", id, err)
	}
	if out.SecretString != nil && *out.SecretString != "" {
		return []byte(*out.SecretString), nil
	}
	if len(out.SecretBinary) > 0 {
		return out.SecretBinary, nil
	}
	return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
}
