package push_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clubnotify/pkg/push"
)

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("mid-42")}, nil
}

func TestSNSGateway_Send(t *testing.T) {
	ctx := context.Background()
	client := &fakeSNS{}
	gw, err := push.NewSNSGateway(ctx, push.Config{}, push.WithSNSClient(client))
	require.NoError(t, err)

	id, err := gw.Send(ctx, "arn:endpoint", push.Message{
		Title: "LIKE",
		Body:  "Alice liked your post",
		Data:  map[string]string{"notification_id": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mid-42", id)
	assert.Equal(t, "arn:endpoint", aws.ToString(client.input.TargetArn))
	assert.Equal(t, "json", aws.ToString(client.input.MessageStructure))

	var doc map[string]string
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.input.Message)), &doc))
	assert.Equal(t, "Alice liked your post", doc["default"])

	var gcm struct {
		Notification map[string]string `json:"notification"`
		Data         map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc["GCM"]), &gcm))
	assert.Equal(t, "LIKE", gcm.Notification["title"])
	assert.Equal(t, "1", gcm.Data["notification_id"])

	var apns map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc["APNS"]), &apns))
	assert.Contains(t, apns, "aps")
	assert.Equal(t, "1", apns["notification_id"])
}

func TestSNSGateway_ProviderError(t *testing.T) {
	ctx := context.Background()
	client := &fakeSNS{err: &smithy.GenericAPIError{Code: "EndpointDisabled", Message: "Endpoint is disabled"}}
	gw, err := push.NewSNSGateway(ctx, push.Config{}, push.WithSNSClient(client))
	require.NoError(t, err)

	_, err = gw.Send(ctx, "arn:endpoint", push.Message{Title: "x", Body: "y"})
	require.ErrorIs(t, err, push.ErrProvider)
	assert.Contains(t, err.Error(), "EndpointDisabled")
}

func TestNewSNSGateway_RequiresRegion(t *testing.T) {
	_, err := push.NewSNSGateway(context.Background(), push.Config{})
	require.ErrorIs(t, err, push.ErrInvalidConfig)
}
