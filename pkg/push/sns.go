package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
)

// SNSClient is the part of *sns.Client used by SNSGateway.
type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSGateway sends mobile push messages to SNS platform endpoints.
// The address is the endpoint ARN registered for the user's device.
type SNSGateway struct {
	client SNSClient
}

type snsOptions struct {
	client        SNSClient
	httpClient    *http.Client
	configOptions []func(*config.LoadOptions) error
}

// SNSOption configures NewSNSGateway.
type SNSOption func(*snsOptions)

// WithSNSClient uses a pre-configured client instead of loading AWS config.
func WithSNSClient(c SNSClient) SNSOption {
	return func(o *snsOptions) { o.client = c }
}

// WithSNSHTTPClient sets a custom HTTP client for SNS requests.
func WithSNSHTTPClient(c *http.Client) SNSOption {
	return func(o *snsOptions) { o.httpClient = c }
}

// WithSNSConfigOption adds a custom AWS config option.
func WithSNSConfigOption(opt func(*config.LoadOptions) error) SNSOption {
	return func(o *snsOptions) { o.configOptions = append(o.configOptions, opt) }
}

// NewSNSGateway creates an SNS gateway. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain.
func NewSNSGateway(ctx context.Context, cfg Config, opts ...SNSOption) (*SNSGateway, error) {
	options := &snsOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.client != nil {
		return &SNSGateway{client: options.client}, nil
	}

	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required for sns", ErrInvalidConfig)
	}

	awsOptions := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		awsOptions = append(awsOptions,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretKey,
				"",
			)),
		)
	}
	if options.httpClient != nil {
		awsOptions = append(awsOptions, config.WithHTTPClient(options.httpClient))
	}
	awsOptions = append(awsOptions, options.configOptions...)

	awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
	}

	client := sns.NewFromConfig(awsConfig, func(o *sns.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &SNSGateway{client: client}, nil
}

func (g *SNSGateway) Send(ctx context.Context, address string, msg Message) (string, error) {
	body, err := platformMessage(msg)
	if err != nil {
		return "", err
	}

	out, err := g.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(address),
		Message:          aws.String(body),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return "", providerError(err)
	}
	return aws.ToString(out.MessageId), nil
}

// platformMessage builds the per-platform JSON document SNS expects when
// MessageStructure is "json".
func platformMessage(msg Message) (string, error) {
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{"title": msg.Title, "body": msg.Body},
		"data":         msg.Data,
	})
	if err != nil {
		return "", fmt.Errorf("marshal gcm payload: %w", err)
	}

	apnsBody := map[string]any{
		"aps": map[string]any{
			"alert": map[string]string{"title": msg.Title, "body": msg.Body},
		},
	}
	for k, v := range msg.Data {
		if k != "aps" {
			apnsBody[k] = v
		}
	}
	apns, err := json.Marshal(apnsBody)
	if err != nil {
		return "", fmt.Errorf("marshal apns payload: %w", err)
	}

	doc, err := json.Marshal(map[string]string{
		"default":      msg.Body,
		"GCM":          string(gcm),
		"APNS":         string(apns),
		"APNS_SANDBOX": string(apns),
	})
	if err != nil {
		return "", fmt.Errorf("marshal sns message: %w", err)
	}
	return string(doc), nil
}

func providerError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %s", ErrProvider, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return errors.Join(ErrProvider, err)
}
