package dynamostore

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// OfferHistoryRepository keeps the append-only status history.
//
// Table requirements:
//   - PK: offer_id (string), SK: event_key (string)
type OfferHistoryRepository struct {
	ddb       API
	tableName string
}

var _ domain.OfferHistoryRepository = (*OfferHistoryRepository)(nil)

func NewOfferHistoryRepository(ddb API, tableName string) *OfferHistoryRepository {
	return &OfferHistoryRepository{ddb: ddb, tableName: tableName}
}

func (r *OfferHistoryRepository) AppendOfferEvent(ctx context.Context, event *domain.OfferStatusEvent) error {
	av, err := attributevalue.MarshalMap(toOfferEventItem(event))
	if err != nil {
		return fmt.Errorf("marshal offer event: %w", err)
	}
	if _, err := r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("put offer event: %w", err)
	}
	return nil
}

func (r *OfferHistoryRepository) ListOfferEvents(ctx context.Context, offerID string) ([]*domain.OfferStatusEvent, error) {
	raw, err := queryAll(ctx, r.ddb, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("offer_id = :oid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":oid": &types.AttributeValueMemberS{Value: offerID}},
		ConsistentRead:            aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query offer events: %w", err)
	}
	events := make([]*domain.OfferStatusEvent, 0, len(raw))
	for _, item := range raw {
		var it offerEventItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, fmt.Errorf("unmarshal offer event: %w", err)
		}
		events = append(events, fromOfferEventItem(it))
	}
	return events, nil
}
