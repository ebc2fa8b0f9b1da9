package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

type productItem struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Barcode     string `dynamodbav:"barcode,omitempty"`
	Description string `dynamodbav:"description,omitempty"`
	Category    string `dynamodbav:"category,omitempty"`
	UnitPrice   string `dynamodbav:"unit_price"`
	Quantity    int    `dynamodbav:"quantity"`
	CreatedAt   string `dynamodbav:"created_at"`
	UpdatedAt   string `dynamodbav:"updated_at"`
}

// ProductDynamoRepository persists the catalog in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// Prices are stored as decimal strings so no float rounding ever touches money.
type ProductDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.IProductRepository = (*ProductDynamoRepository)(nil)

func NewProductDynamoRepository(ddb DynamoDBAPI, tableName string) *ProductDynamoRepository {
	return &ProductDynamoRepository{
		ddb:       ddb,
		tableName: tableOrDefault(tableName, defaultProductsTableName),
	}
}

func (r *ProductDynamoRepository) Create(ctx context.Context, p entities.Product) (entities.Product, error) {
	av, err := attributevalue.MarshalMap(toProductItem(p))
	if err != nil {
		return entities.Product{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return entities.Product{}, entities.ErrProductExists
		}
		return entities.Product{}, err
	}
	return p, nil
}

func (r *ProductDynamoRepository) GetByID(ctx context.Context, id string) (entities.Product, error) {
	return getProduct(ctx, r.ddb, r.tableName, id)
}

// List scans the whole table, then filters and orders in memory.
func (r *ProductDynamoRepository) List(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, error) {
	products := []entities.Product{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
			ConsistentRead:    aws.Bool(true),
		})
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			p, err := unmarshalProduct(raw)
			if err != nil {
				return nil, err
			}
			if filter.Matches(p) {
				products = append(products, p)
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	entities.SortProducts(products, filter.Sort)
	return products, nil
}

// UpdateDetails never touches quantity. A missing product yields a zero value.
func (r *ProductDynamoRepository) UpdateDetails(ctx context.Context, id string, d entities.ProductDetails, now time.Time) (entities.Product, error) {
	sets := []string{"#updated_at = :updated_at"}
	names := map[string]string{"#updated_at": "updated_at"}
	values := map[string]types.AttributeValue{
		":updated_at": &types.AttributeValueMemberS{Value: formatTime(now)},
	}
	set := func(attr, value string) {
		sets = append(sets, fmt.Sprintf("#%s = :%s", attr, attr))
		names["#"+attr] = attr
		values[":"+attr] = &types.AttributeValueMemberS{Value: value}
	}
	if d.Name != nil {
		set("name", *d.Name)
	}
	if d.Barcode != nil {
		set("barcode", *d.Barcode)
	}
	if d.Description != nil {
		set("description", *d.Description)
	}
	if d.Category != nil {
		set("category", *d.Category)
	}
	if d.UnitPrice != nil {
		set("unit_price", d.UnitPrice.StringFixed(2))
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       idKey(id),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailure(err) {
			return entities.Product{}, nil
		}
		return entities.Product{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Product{}, nil
	}
	return unmarshalProduct(out.Attributes)
}

func getProduct(ctx context.Context, ddb DynamoDBAPI, table, id string) (entities.Product, error) {
	out, err := ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Product{}, err
	}
	if len(out.Item) == 0 {
		return entities.Product{}, nil
	}
	return unmarshalProduct(out.Item)
}

func unmarshalProduct(raw map[string]types.AttributeValue) (entities.Product, error) {
	var it productItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return entities.Product{}, err
	}
	return fromProductItem(it)
}

func toProductItem(p entities.Product) productItem {
	return productItem{
		ID:          p.ID,
		Name:        p.Name,
		Barcode:     p.Barcode,
		Description: p.Description,
		Category:    p.Category,
		UnitPrice:   p.UnitPrice.StringFixed(2),
		Quantity:    p.Quantity,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func fromProductItem(it productItem) (entities.Product, error) {
	price, err := decimal.NewFromString(it.UnitPrice)
	if err != nil {
		return entities.Product{}, fmt.Errorf("product %s: bad unit_price %q: %w", it.ID, it.UnitPrice, err)
	}
	return entities.Product{
		ID:          it.ID,
		Name:        it.Name,
		Barcode:     it.Barcode,
		Description: it.Description,
		Category:    it.Category,
		UnitPrice:   price,
		Quantity:    it.Quantity,
		CreatedAt:   parseTime(it.CreatedAt),
		UpdatedAt:   parseTime(it.UpdatedAt),
	}, nil
}
