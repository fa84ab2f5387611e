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
	requestsCustomerIndex = "customer_id-created_at-index"
	requestsStatusIndex   = "status-created_at-index"
)

// DishRequestRepository stores dish requests in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: customer_id-created_at-index (PK: customer_id, SK: created_at)
//   - GSI: status-created_at-index (PK: status, SK: created_at)
type DishRequestRepository struct {
	ddb       API
	tableName string
}

var _ domain.DishRequestRepository = (*DishRequestRepository)(nil)

func NewDishRequestRepository(ddb API, tableName string) *DishRequestRepository {
	return &DishRequestRepository{ddb: ddb, tableName: tableName}
}

func (r *DishRequestRepository) CreateRequest(ctx context.Context, request *domain.DishRequest) error {
	av, err := attributevalue.MarshalMap(toDishRequestItem(request))
	if err != nil {
		return fmt.Errorf("marshal dish request: %w", err)
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		if isConditionFailed(err) {
			return domain.NewError(domain.CodeConflict, "dish request %s already exists", request.ID)
		}
		return fmt.Errorf("put dish request: %w", err)
	}
	return nil
}

func (r *DishRequestRepository) GetRequestByID(ctx context.Context, requestID string) (*domain.DishRequest, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            stringKey("id", requestID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get dish request: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
	}
	var it dishRequestItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal dish request: %w", err)
	}
	return fromDishRequestItem(it), nil
}

func (r *DishRequestRepository) UpdateRequestStatus(ctx context.Context, requestID string, status domain.RequestStatus, at time.Time) (*domain.DishRequest, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 stringKey("id", requestID),
		UpdateExpression:    aws.String("SET #status = :status, #updated_at = :updated_at"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#status":     "status",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":updated_at": &types.AttributeValueMemberS{Value: formatTime(at)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
		}
		return nil, fmt.Errorf("update dish request status: %w", err)
	}
	var it dishRequestItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal dish request: %w", err)
	}
	return fromDishRequestItem(it), nil
}

func (r *DishRequestRepository) DeleteRequest(ctx context.Context, requestID string) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      stringKey("id", requestID),
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		if isConditionFailed(err) {
			return domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
		}
		return fmt.Errorf("delete dish request: %w", err)
	}
	return nil
}

func (r *DishRequestRepository) ListRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.DishRequest, error) {
	return r.query(ctx, requestsStatusIndex, "status", string(status))
}

func (r *DishRequestRepository) ListRequestsByCustomer(ctx context.Context, customerID string) ([]*domain.DishRequest, error) {
	return r.query(ctx, requestsCustomerIndex, "customer_id", customerID)
}

func (r *DishRequestRepository) query(ctx context.Context, index, attr, value string) ([]*domain.DishRequest, error) {
	raw, err := queryAll(ctx, r.ddb, newestFirstQuery(r.tableName, index, attr, value))
	if err != nil {
		return nil, fmt.Errorf("query dish requests by %s: %w", attr, err)
	}
	requests := make([]*domain.DishRequest, 0, len(raw))
	for _, item := range raw {
		var it dishRequestItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, fmt.Errorf("unmarshal dish request: %w", err)
		}
		requests = append(requests, fromDishRequestItem(it))
	}
	return requests, nil
}

func stringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func newestFirstQuery(table, index, attr, value string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		ScanIndexForward:          aws.Bool(false),
	}
}

func queryAll(ctx context.Context, ddb API, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(ddb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
