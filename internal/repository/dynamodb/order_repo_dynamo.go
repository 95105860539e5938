package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// API is the subset of *dynamodb.Client the repository calls.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

const userIndex = "GSI1"

type OrderRepository struct {
	client    API
	tableName string
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(client API, tableName string) *OrderRepository {
	return &OrderRepository{client: client, tableName: tableName}
}

type itemRecord struct {
	Title     string `dynamodbav:"title"`
	Quantity  int    `dynamodbav:"quantity"`
	UnitPrice string `dynamodbav:"unit_price"`
	Image     string `dynamodbav:"image,omitempty"`
	Platform  string `dynamodbav:"platform,omitempty"`
}

// orderRecord is the stored document. Money is kept as decimal strings so no
// float rounding happens inside the store.
type orderRecord struct {
	PK            string         `dynamodbav:"PK"`
	SK            string         `dynamodbav:"SK"`
	GSI1PK        string         `dynamodbav:"GSI1PK"`
	GSI1SK        string         `dynamodbav:"GSI1SK"`
	OrderID       string         `dynamodbav:"order_id"`
	UserID        string         `dynamodbav:"user_id"`
	Items         []itemRecord   `dynamodbav:"items"`
	Address       domain.Address `dynamodbav:"address"`
	Total         string         `dynamodbav:"total"`
	Currency      string         `dynamodbav:"currency"`
	Receipt       string         `dynamodbav:"receipt,omitempty"`
	PaymentMethod string         `dynamodbav:"payment_method"`
	Status        string         `dynamodbav:"status"`
	PaymentID     string         `dynamodbav:"payment_id,omitempty"`
	CreatedAt     time.Time      `dynamodbav:"created_at"`
	UpdatedAt     time.Time      `dynamodbav:"updated_at"`
}

func orderKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "ORDER#" + id},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

func toRecord(o *domain.Order) orderRecord {
	items := make([]itemRecord, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemRecord{
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.String(),
			Image:     it.Image,
			Platform:  it.Platform,
		})
	}
	return orderRecord{
		PK:            "ORDER#" + o.ID,
		SK:            "METADATA",
		GSI1PK:        "USER#" + o.UserID,
		GSI1SK:        "ORDER#" + o.CreatedAt.UTC().Format(time.RFC3339Nano),
		OrderID:       o.ID,
		UserID:        o.UserID,
		Items:         items,
		Address:       o.Address,
		Total:         o.Total.String(),
		Currency:      o.Currency,
		Receipt:       o.Receipt,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		PaymentID:     o.PaymentID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (r orderRecord) toDomain() (*domain.Order, error) {
	total, err := decimal.NewFromString(r.Total)
	if err != nil {
		return nil, fmt.Errorf("order %s: bad total %q: %w", r.OrderID, r.Total, err)
	}
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("order %s: bad unit price %q: %w", r.OrderID, it.UnitPrice, err)
		}
		items = append(items, domain.OrderItem{
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: price,
			Image:     it.Image,
			Platform:  it.Platform,
		})
	}
	return &domain.Order{
		ID:            r.OrderID,
		UserID:        r.UserID,
		Items:         items,
		Address:       r.Address,
		Total:         total,
		Currency:      r.Currency,
		Receipt:       r.Receipt,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Status:        domain.OrderStatus(r.Status),
		PaymentID:     r.PaymentID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	av, err := attributevalue.MarshalMap(toRecord(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return repository.ErrDuplicateOrder
		}
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            orderKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec orderRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return rec.toDomain()
}

func (r *OrderRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(userIndex),
		KeyConditionExpression: aws.String("GSI1PK = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: "USER#" + userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var recs []orderRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal orders: %w", err)
	}
	orders := make([]domain.Order, 0, len(recs))
	for _, rec := range recs {
		o, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// TransitionStatus relies on ConditionExpression so the guard and the write
// are one atomic operation on the item.
func (r *OrderRepository) TransitionStatus(ctx context.Context, id string, change repository.StatusChange) (bool, error) {
	sources := domain.SourcesOf(change.To)
	if len(sources) == 0 {
		return false, nil
	}

	values := map[string]types.AttributeValue{
		":to": &types.AttributeValueMemberS{Value: string(change.To)},
		":at": &types.AttributeValueMemberS{Value: change.At.UTC().Format(time.RFC3339Nano)},
	}
	placeholders := ""
	for i, s := range sources {
		key := fmt.Sprintf(":s%d", i)
		values[key] = &types.AttributeValueMemberS{Value: string(s)}
		if i > 0 {
			placeholders += ", "
		}
		placeholders += key
	}

	update := "SET #status = :to, updated_at = :at"
	if change.PaymentID != "" {
		update += ", payment_id = :pid"
		values[":pid"] = &types.AttributeValueMemberS{Value: change.PaymentID}
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       orderKey(id),
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("attribute_exists(PK) AND #status IN (" + placeholders + ")"),
		ExpressionAttributeNames:  map[string]string{"#status": "status"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return true, nil
}
