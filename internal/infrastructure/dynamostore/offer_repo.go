package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	offersRequestIndex  = "request_id-submitted_at-index"
	offersSellerIndex   = "seller_id-submitted_at-index"
	offersCustomerIndex = "customer_id-submitted_at-index"
	offersStatusIndex   = "status-expires_at-index"

	conditionFailedCode = "ConditionalCheckFailed"
)

// OfferRepository stores offers in DynamoDB.
//
// Table requirements:
//   - PK: pk (string). Offer items use "offer#<id>"; the same table holds
//     "pending#<request>#<seller>" locks and "approved#<request>" markers.
//   - GSIs: request_id, seller_id and customer_id (SK: submitted_at);
//     status-expires_at-index (PK: status, SK: expires_at).
type OfferRepository struct {
	ddb       API
	tableName string
}

var _ domain.OfferRepository = (*OfferRepository)(nil)

func NewOfferRepository(ddb API, tableName string) *OfferRepository {
	return &OfferRepository{ddb: ddb, tableName: tableName}
}

// CreateOffer writes the offer and its pending lock in one transaction. A lost race on
// the lock cancels the whole write.
func (r *OfferRepository) CreateOffer(ctx context.Context, offer *domain.Offer) error {
	offerAV, err := attributevalue.MarshalMap(toOfferItem(offer))
	if err != nil {
		return fmt.Errorf("marshal offer: %w", err)
	}
	lockKey := pendingLockKey(offer.RequestID, offer.SellerID)
	lockAV, err := attributevalue.MarshalMap(markerItem{PK: lockKey, OfferID: offer.ID})
	if err != nil {
		return fmt.Errorf("marshal pending lock: %w", err)
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     offerAV,
				ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
				ExpressionAttributeNames: map[string]string{"#pk": "pk"},
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     lockAV,
				ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
				ExpressionAttributeNames: map[string]string{"#pk": "pk"},
			}},
		},
	})
	if err == nil {
		return nil
	}
	if !cancelledAt(err, 1) {
		return fmt.Errorf("create offer: %w", err)
	}

	existing, lookupErr := r.pendingHolder(ctx, lockKey)
	if lookupErr != nil || existing == nil {
		return &domain.ConflictError{}
	}
	return &domain.ConflictError{Existing: existing}
}

func (r *OfferRepository) pendingHolder(ctx context.Context, lockKey string) (*domain.Offer, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            stringKey("pk", lockKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil || len(out.Item) == 0 {
		return nil, err
	}
	var lock markerItem
	if err := attributevalue.UnmarshalMap(out.Item, &lock); err != nil {
		return nil, err
	}
	return r.GetOfferByID(ctx, lock.OfferID)
}

func (r *OfferRepository) GetOfferByID(ctx context.Context, offerID string) (*domain.Offer, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            stringKey("pk", offerKey(offerID)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get offer: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, domain.NewError(domain.CodeNotFound, "offer %s not found", offerID)
	}
	var it offerItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal offer: %w", err)
	}
	return fromOfferItem(it), nil
}

func (r *OfferRepository) ListOffersByRequest(ctx context.Context, requestID string) ([]*domain.Offer, error) {
	return r.query(ctx, newestFirstQuery(r.tableName, offersRequestIndex, "request_id", requestID))
}

func (r *OfferRepository) ListOffersByCustomer(ctx context.Context, customerID string) ([]*domain.Offer, error) {
	return r.query(ctx, newestFirstQuery(r.tableName, offersCustomerIndex, "customer_id", customerID))
}

func (r *OfferRepository) ListOffersBySeller(ctx context.Context, sellerID string) ([]*domain.Offer, error) {
	return r.query(ctx, newestFirstQuery(r.tableName, offersSellerIndex, "seller_id", sellerID))
}

func (r *OfferRepository) FindLatestOffer(ctx context.Context, sellerID, requestID string) (*domain.Offer, error) {
	input := newestFirstQuery(r.tableName, offersRequestIndex, "request_id", requestID)
	input.FilterExpression = aws.String("seller_id = :seller")
	input.ExpressionAttributeValues[":seller"] = &types.AttributeValueMemberS{Value: sellerID}

	var latest *domain.Offer
	paginator := dynamodb.NewQueryPaginator(r.ddb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("find latest offer: %w", err)
		}
		for _, item := range page.Items {
			var it offerItem
			if err := attributevalue.UnmarshalMap(item, &it); err != nil {
				return nil, fmt.Errorf("unmarshal offer: %w", err)
			}
			offer := fromOfferItem(it)
			if offer.IsPending() {
				return offer, nil
			}
			if latest == nil {
				latest = offer
			}
		}
	}
	return latest, nil
}

// TransitionOfferStatus updates the offer conditioned on its current status. Leaving
// pending releases the seller's lock; approving claims the request's approval marker.
func (r *OfferRepository) TransitionOfferStatus(ctx context.Context, change domain.StatusChange) (*domain.Offer, error) {
	current, err := r.GetOfferByID(ctx, change.OfferID)
	if err != nil {
		return nil, err
	}
	if current.Status != change.From {
		return nil, domain.NewError(domain.CodeStaleState, "offer %s is %s, not %s", change.OfferID, current.Status, change.From)
	}

	at := change.At.UTC()
	update := "SET #status = :to, #updated_at = :at"
	values := map[string]types.AttributeValue{
		":from": &types.AttributeValueMemberS{Value: string(change.From)},
		":to":   &types.AttributeValueMemberS{Value: string(change.To)},
		":at":   &types.AttributeValueMemberS{Value: formatTime(at)},
	}
	names := map[string]string{
		"#status":     "status",
		"#updated_at": "updated_at",
	}
	if change.To.Terminal() {
		update += ", #decided_at = :at"
		names["#decided_at"] = "decided_at"
	}

	items := []types.TransactWriteItem{
		{Update: &types.Update{
			TableName:                 aws.String(r.tableName),
			Key:                       stringKey("pk", offerKey(change.OfferID)),
			UpdateExpression:          aws.String(update),
			ConditionExpression:       aws.String("#status = :from"),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		}},
	}
	if change.From == domain.OfferPending {
		items = append(items, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key:       stringKey("pk", pendingLockKey(current.RequestID, current.SellerID)),
		}})
	}
	approvalAt := -1
	if change.To == domain.OfferApproved {
		markerAV, err := attributevalue.MarshalMap(markerItem{PK: approvalKey(current.RequestID), OfferID: current.ID})
		if err != nil {
			return nil, fmt.Errorf("marshal approval marker: %w", err)
		}
		approvalAt = len(items)
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName:                aws.String(r.tableName),
			Item:                     markerAV,
			ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
			ExpressionAttributeNames: map[string]string{"#pk": "pk"},
		}})
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	switch {
	case err == nil:
	case cancelledAt(err, 0):
		return nil, domain.NewError(domain.CodeStaleState, "offer %s is no longer %s", change.OfferID, change.From)
	case approvalAt >= 0 && cancelledAt(err, approvalAt):
		return nil, domain.NewError(domain.CodeInvalidState, "request %s already has an approved offer", current.RequestID)
	default:
		return nil, fmt.Errorf("transition offer: %w", err)
	}

	current.Status = change.To
	current.UpdatedAt = at
	if change.To.Terminal() {
		current.DecidedAt = &at
	}
	return current, nil
}

func (r *OfferRepository) FindExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*domain.Offer, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(offersStatusIndex),
		KeyConditionExpression: aws.String("#status = :pending AND expires_at <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending": &types.AttributeValueMemberS{Value: string(domain.OfferPending)},
			":now":     &types.AttributeValueMemberS{Value: formatTime(now)},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}
	out, err := r.ddb.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("find expired offers: %w", err)
	}
	return unmarshalOffers(out.Items)
}

func (r *OfferRepository) query(ctx context.Context, input *dynamodb.QueryInput) ([]*domain.Offer, error) {
	raw, err := queryAll(ctx, r.ddb, input)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	return unmarshalOffers(raw)
}

func unmarshalOffers(raw []map[string]types.AttributeValue) ([]*domain.Offer, error) {
	offers := make([]*domain.Offer, 0, len(raw))
	for _, item := range raw {
		var it offerItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, fmt.Errorf("unmarshal offer: %w", err)
		}
		offers = append(offers, fromOfferItem(it))
	}
	return offers, nil
}

// cancelledAt reports whether err is a cancelled transaction whose item at index failed
// its condition.
func cancelledAt(err error, index int) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	if index >= len(tce.CancellationReasons) {
		return false
	}
	return aws.ToString(tce.CancellationReasons[index].Code) == conditionFailedCode
}
