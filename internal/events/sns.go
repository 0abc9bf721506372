package events

import (
	"context"
	"encoding/json"

	awsclient "franchise-inventory/internal/common/aws"
	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/common/logger"
)

// SNSPublisher sends events as JSON messages to a single SNS topic. The
// event type is also carried as the "eventType" message attribute so
// subscriptions can filter on it.
type SNSPublisher struct {
	client   *awsclient.SNSClient
	topicARN string
	logger   logger.Logger
}

func NewSNSPublisher(client *awsclient.SNSClient, topicARN string, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN, logger: log}
}

func (p *SNSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	messageID, err := p.client.PublishMessage(ctx, p.topicARN, string(event.Type), string(body), map[string]string{
		"eventType":   string(event.Type),
		"franchiseId": event.FranchiseID,
	})
	if err != nil {
		return apperrors.NewPublishFailedError(p.topicARN, err)
	}

	p.logger.Debug("Published product event", map[string]interface{}{
		"eventType": event.Type,
		"productId": event.ProductID,
		"messageId": messageID,
	})
	return nil
}
