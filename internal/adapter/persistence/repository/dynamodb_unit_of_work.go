package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultTxMaxAttempts = 3

var errSaleExists = errors.New("sale already exists")

// DynamoUnitOfWork runs a closure against buffered reads and writes and commits
// the writes with a single TransactWriteItems call.
//
// Every product write is conditioned on the quantity that was read and every
// sale write on the version that was read. When another writer got there
// first the closure is re-run from fresh reads, up to maxAttempts times.
//
// Clients are read but never written here; they are not deleted, so the read needs no
// condition check and the transaction keeps its item budget for stock and the sale.
type DynamoUnitOfWork struct {
	ddb         DynamoDBAPI
	tables      Tables
	maxAttempts int
	now         func() time.Time
}

var _ interfaces.IUnitOfWork = (*DynamoUnitOfWork)(nil)

func NewDynamoUnitOfWork(ddb DynamoDBAPI, tables Tables, maxAttempts int) *DynamoUnitOfWork {
	if maxAttempts < 1 {
		maxAttempts = defaultTxMaxAttempts
	}
	return &DynamoUnitOfWork{
		ddb:         ddb,
		tables:      tables.withDefaults(),
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (u *DynamoUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.ITx) error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := newDynamoTx(u)
		err := fn(ctx, tx)
		if err == nil {
			err = tx.commit(ctx)
			if err == nil {
				return nil
			}
			if !isTxConflict(err) {
				return err
			}
			err = entities.ErrConcurrentUpdate
		}
		if !errors.Is(err, entities.ErrConcurrentUpdate) || attempt >= u.maxAttempts {
			return err
		}
	}
}

type productWrite struct {
	expected int
	next     int
}

type saleWrite struct {
	sale            entities.Sale
	insert          bool
	expectedVersion int64
}

type dynamoTx struct {
	uow *DynamoUnitOfWork

	products      map[string]entities.Product
	productWrites map[string]*productWrite

	sales      map[string]entities.Sale
	saleWrites map[string]*saleWrite
	saleOrder  []string
}

var _ interfaces.ITx = (*dynamoTx)(nil)

func newDynamoTx(u *DynamoUnitOfWork) *dynamoTx {
	return &dynamoTx{
		uow:           u,
		products:      map[string]entities.Product{},
		productWrites: map[string]*productWrite{},
		sales:         map[string]entities.Sale{},
		saleWrites:    map[string]*saleWrite{},
	}
}

func (t *dynamoTx) GetProduct(ctx context.Context, id string) (entities.Product, error) {
	if p, ok := t.products[id]; ok {
		return p, nil
	}
	p, err := getProduct(ctx, t.uow.ddb, t.uow.tables.Products, id)
	if err != nil {
		return entities.Product{}, err
	}
	if p.ID != "" {
		t.products[id] = p
	}
	return p, nil
}

func (t *dynamoTx) GetClient(ctx context.Context, id string) (entities.Client, error) {
	return getClient(ctx, t.uow.ddb, t.uow.tables.Clients, id)
}

func (t *dynamoTx) SetProductQuantity(ctx context.Context, id string, expected, next int) error {
	p, err := t.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if p.ID == "" {
		return entities.ErrProductNotFound
	}
	if p.Quantity != expected {
		return entities.ErrConcurrentUpdate
	}
	w, ok := t.productWrites[id]
	if !ok {
		w = &productWrite{expected: expected}
		t.productWrites[id] = w
	}
	w.next = next
	p.Quantity = next
	t.products[id] = p
	return nil
}

func (t *dynamoTx) GetSale(ctx context.Context, id string) (entities.Sale, error) {
	if s, ok := t.sales[id]; ok {
		return s, nil
	}
	s, err := getSale(ctx, t.uow.ddb, t.uow.tables.Sales, id)
	if err != nil {
		return entities.Sale{}, err
	}
	if s.ID != "" {
		t.sales[id] = s
	}
	return s, nil
}

func (t *dynamoTx) InsertSale(ctx context.Context, s entities.Sale) error {
	current, err := t.GetSale(ctx, s.ID)
	if err != nil {
		return err
	}
	if current.ID != "" {
		return errSaleExists
	}
	t.sales[s.ID] = s
	t.saleWrites[s.ID] = &saleWrite{sale: s, insert: true}
	t.saleOrder = append(t.saleOrder, s.ID)
	return nil
}

func (t *dynamoTx) UpdateSale(ctx context.Context, s entities.Sale, expectedVersion int64) error {
	current, err := t.GetSale(ctx, s.ID)
	if err != nil {
		return err
	}
	if current.ID == "" {
		return entities.ErrSaleNotFound
	}
	if current.Version != expectedVersion {
		return entities.ErrConcurrentUpdate
	}
	t.sales[s.ID] = s
	if w, ok := t.saleWrites[s.ID]; ok {
		w.sale = s
		return nil
	}
	t.saleWrites[s.ID] = &saleWrite{sale: s, expectedVersion: expectedVersion}
	t.saleOrder = append(t.saleOrder, s.ID)
	return nil
}

// writeItems builds the transaction in a stable order: products by id, then sales in write order.
func (t *dynamoTx) writeItems() ([]types.TransactWriteItem, error) {
	ids := make([]string, 0, len(t.productWrites))
	for id := range t.productWrites {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := formatTime(t.uow.now())
	items := make([]types.TransactWriteItem, 0, len(ids)+len(t.saleOrder))
	for _, id := range ids {
		w := t.productWrites[id]
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(t.uow.tables.Products),
				Key:                 idKey(id),
				UpdateExpression:    aws.String("SET #quantity = :next, #updated_at = :updated_at"),
				ConditionExpression: aws.String("#quantity = :expected"),
				ExpressionAttributeNames: map[string]string{
					"#quantity":   "quantity",
					"#updated_at": "updated_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":next":       &types.AttributeValueMemberN{Value: strconv.Itoa(w.next)},
					":expected":   &types.AttributeValueMemberN{Value: strconv.Itoa(w.expected)},
					":updated_at": &types.AttributeValueMemberS{Value: now},
				},
			},
		})
	}

	for _, id := range t.saleOrder {
		w := t.saleWrites[id]
		av, err := attributevalue.MarshalMap(toSaleItem(w.sale))
		if err != nil {
			return nil, fmt.Errorf("marshal sale %s: %w", id, err)
		}
		put := &types.Put{
			TableName:                aws.String(t.uow.tables.Sales),
			Item:                     av,
			ExpressionAttributeNames: map[string]string{},
		}
		if w.insert {
			put.ConditionExpression = aws.String("attribute_not_exists(#id)")
			put.ExpressionAttributeNames["#id"] = "id"
		} else {
			put.ConditionExpression = aws.String("#version = :expected_version")
			put.ExpressionAttributeNames["#version"] = "version"
			put.ExpressionAttributeValues = map[string]types.AttributeValue{
				":expected_version": &types.AttributeValueMemberN{Value: strconv.FormatInt(w.expectedVersion, 10)},
			}
		}
		items = append(items, types.TransactWriteItem{Put: put})
	}
	return items, nil
}

func (t *dynamoTx) commit(ctx context.Context) error {
	items, err := t.writeItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	_, err = t.uow.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return err
}
