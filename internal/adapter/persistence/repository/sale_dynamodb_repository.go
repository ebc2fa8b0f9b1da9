package repository

import (
	"context"
	"fmt"
	"sort"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

type saleLineItem struct {
	ID          string `dynamodbav:"id"`
	ProductID   string `dynamodbav:"product_id"`
	ProductName string `dynamodbav:"product_name"`
	Quantity    int    `dynamodbav:"quantity"`
	UnitPrice   string `dynamodbav:"unit_price"`
}

type saleItem struct {
	ID               string         `dynamodbav:"id"`
	ClientID         string         `dynamodbav:"client_id,omitempty"`
	SellerID         string         `dynamodbav:"seller_id"`
	PaymentMethod    string         `dynamodbav:"payment_method"`
	PaymentStatus    string         `dynamodbav:"payment_status"`
	Status           string         `dynamodbav:"status"`
	Total            string         `dynamodbav:"total"`
	Items            []saleLineItem `dynamodbav:"items"`
	PaymentReference string         `dynamodbav:"payment_reference,omitempty"`
	IdempotencyKey   string         `dynamodbav:"idempotency_key,omitempty"`
	CreatedAt        string         `dynamodbav:"created_at"`
	UpdatedAt        string         `dynamodbav:"updated_at"`
	CancelledAt      string         `dynamodbav:"cancelled_at,omitempty"`
	CancelledBy      string         `dynamodbav:"cancelled_by,omitempty"`
	CancelNote       string         `dynamodbav:"cancel_note,omitempty"`
	Version          int64          `dynamodbav:"version"`
}

// SaleDynamoRepository reads sales from DynamoDB. Writes go through DynamoUnitOfWork.
//
// Table requirements:
//   - PK: id (string)
//   - GSI seller_id-index: PK seller_id (string)
type SaleDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.ISaleRepository = (*SaleDynamoRepository)(nil)

func NewSaleDynamoRepository(ddb DynamoDBAPI, tableName string) *SaleDynamoRepository {
	return &SaleDynamoRepository{
		ddb:       ddb,
		tableName: tableOrDefault(tableName, defaultSalesTableName),
	}
}

func (r *SaleDynamoRepository) GetByID(ctx context.Context, id string) (entities.Sale, error) {
	return getSale(ctx, r.ddb, r.tableName, id)
}

// List queries the seller index when a seller is given and scans otherwise.
// Results are newest first.
func (r *SaleDynamoRepository) List(ctx context.Context, filter entities.SaleFilter) ([]entities.Sale, error) {
	sales := []entities.Sale{}
	collect := func(items []map[string]types.AttributeValue) error {
		for _, raw := range items {
			s, err := unmarshalSale(raw)
			if err != nil {
				return err
			}
			if filter.Matches(s) {
				sales = append(sales, s)
			}
		}
		return nil
	}

	var startKey map[string]types.AttributeValue
	for {
		var (
			items   []map[string]types.AttributeValue
			lastKey map[string]types.AttributeValue
		)
		if filter.SellerID != "" {
			out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
				TableName:              aws.String(r.tableName),
				IndexName:              aws.String(SellerIndexName),
				KeyConditionExpression: aws.String("#seller_id = :seller_id"),
				ExpressionAttributeNames: map[string]string{
					"#seller_id": "seller_id",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":seller_id": &types.AttributeValueMemberS{Value: filter.SellerID},
				},
				ExclusiveStartKey: startKey,
			})
			if err != nil {
				return nil, err
			}
			items, lastKey = out.Items, out.LastEvaluatedKey
		} else {
			out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
				TableName:         aws.String(r.tableName),
				ExclusiveStartKey: startKey,
				ConsistentRead:    aws.Bool(true),
			})
			if err != nil {
				return nil, err
			}
			items, lastKey = out.Items, out.LastEvaluatedKey
		}
		if err := collect(items); err != nil {
			return nil, err
		}
		if len(lastKey) == 0 {
			break
		}
		startKey = lastKey
	}

	sort.SliceStable(sales, func(i, j int) bool { return sales[i].CreatedAt.After(sales[j].CreatedAt) })
	return sales, nil
}

func getSale(ctx context.Context, ddb DynamoDBAPI, table, id string) (entities.Sale, error) {
	out, err := ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Sale{}, err
	}
	if len(out.Item) == 0 {
		return entities.Sale{}, nil
	}
	return unmarshalSale(out.Item)
}

func unmarshalSale(raw map[string]types.AttributeValue) (entities.Sale, error) {
	var it saleItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return entities.Sale{}, err
	}
	return fromSaleItem(it)
}

func toSaleItem(s entities.Sale) saleItem {
	lines := make([]saleLineItem, 0, len(s.Items))
	for _, it := range s.Items {
		lines = append(lines, saleLineItem{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
		})
	}
	out := saleItem{
		ID:               s.ID,
		ClientID:         s.ClientID,
		SellerID:         s.SellerID,
		PaymentMethod:    string(s.PaymentMethod),
		PaymentStatus:    string(s.PaymentStatus),
		Status:           string(s.Status),
		Total:            s.Total.StringFixed(2),
		Items:            lines,
		PaymentReference: s.PaymentReference,
		IdempotencyKey:   s.IdempotencyKey,
		CreatedAt:        formatTime(s.CreatedAt),
		UpdatedAt:        formatTime(s.UpdatedAt),
		CancelledBy:      s.CancelledBy,
		CancelNote:       s.CancelNote,
		Version:          s.Version,
	}
	if s.CancelledAt != nil {
		out.CancelledAt = formatTime(*s.CancelledAt)
	}
	return out
}

func fromSaleItem(it saleItem) (entities.Sale, error) {
	total, err := decimal.NewFromString(it.Total)
	if err != nil {
		return entities.Sale{}, fmt.Errorf("sale %s: bad total %q: %w", it.ID, it.Total, err)
	}
	items := make([]entities.SaleItem, 0, len(it.Items))
	for _, line := range it.Items {
		price, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			return entities.Sale{}, fmt.Errorf("sale %s item %s: bad unit_price %q: %w", it.ID, line.ID, line.UnitPrice, err)
		}
		items = append(items, entities.SaleItem{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   price,
		})
	}
	s := entities.Sale{
		ID:               it.ID,
		ClientID:         it.ClientID,
		SellerID:         it.SellerID,
		PaymentMethod:    entities.PaymentMethod(it.PaymentMethod),
		PaymentStatus:    entities.PaymentStatus(it.PaymentStatus),
		Status:           entities.SaleStatus(it.Status),
		Total:            total,
		Items:            items,
		PaymentReference: it.PaymentReference,
		IdempotencyKey:   it.IdempotencyKey,
		CreatedAt:        parseTime(it.CreatedAt),
		UpdatedAt:        parseTime(it.UpdatedAt),
		CancelledBy:      it.CancelledBy,
		CancelNote:       it.CancelNote,
		Version:          it.Version,
	}
	if it.CancelledAt != "" {
		at := parseTime(it.CancelledAt)
		s.CancelledAt = &at
	}
	return s, nil
}
