package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awsclient "franchise-inventory/internal/common/aws"
	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/models"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSPublisher_Publish(t *testing.T) {
	api := &fakeSNS{}
	pub := NewSNSPublisher(awsclient.NewSNSClientWithAPI(api), "arn:aws:sns:us-east-1:000000000000:inventory", logger.NewTestLogger(t))

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := models.NewProduct("p-1", "f-1", "b-1", "Coffee", 12, now)
	err := pub.Publish(context.Background(), NewProductEvent(ProductCreated, p, models.EmbeddedIn("b-1"), now))
	require.NoError(t, err)

	require.Len(t, api.inputs, 1)
	in := api.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:inventory", aws.ToString(in.TopicArn))
	assert.Equal(t, "product.created", aws.ToString(in.MessageAttributes["eventType"].StringValue))

	var decoded Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &decoded))
	assert.Equal(t, "p-1", decoded.ProductID)
	assert.Equal(t, "EMBEDDED", decoded.Location)
	assert.Equal(t, 12, decoded.Stock)
}

func TestSNSPublisher_PublishFailure(t *testing.T) {
	api := &fakeSNS{err: errors.New("throttled")}
	pub := NewSNSPublisher(awsclient.NewSNSClientWithAPI(api), "arn:topic", logger.NewNoOpLogger())

	err := pub.Publish(context.Background(), Event{Type: ProductDeleted, ProductID: "p-1"})
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodePublishFailed, stdErr.Code)
}
