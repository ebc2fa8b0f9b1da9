package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// cpfGuardPrefix marks the items that reserve a CPF. They share the clients table so the
// client and its guard are written in one transaction.
const cpfGuardPrefix = "cpf#"

type clientItem struct {
	ID        string `dynamodbav:"id"`
	Name      string `dynamodbav:"name"`
	CPF       string `dynamodbav:"cpf,omitempty"`
	Email     string `dynamodbav:"email,omitempty"`
	Phone     string `dynamodbav:"phone,omitempty"`
	City      string `dynamodbav:"city,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

type cpfGuardItem struct {
	ID       string `dynamodbav:"id"`
	ClientID string `dynamodbav:"client_id"`
}

// ClientDynamoRepository persists clients in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// A CPF is reserved by a guard item with id "cpf#<digits>".
type ClientDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.IClientRepository = (*ClientDynamoRepository)(nil)

func NewClientDynamoRepository(ddb DynamoDBAPI, tableName string) *ClientDynamoRepository {
	return &ClientDynamoRepository{
		ddb:       ddb,
		tableName: tableOrDefault(tableName, defaultClientsTableName),
	}
}

func (r *ClientDynamoRepository) Create(ctx context.Context, c entities.Client) (entities.Client, error) {
	av, err := attributevalue.MarshalMap(toClientItem(c))
	if err != nil {
		return entities.Client{}, err
	}
	notExists := func(item map[string]types.AttributeValue) types.TransactWriteItem {
		return types.TransactWriteItem{Put: &types.Put{
			TableName:                aws.String(r.tableName),
			Item:                     item,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
		}}
	}

	items := []types.TransactWriteItem{notExists(av)}
	if c.CPF != "" {
		guard, err := attributevalue.MarshalMap(cpfGuardItem{ID: cpfGuardPrefix + c.CPF, ClientID: c.ID})
		if err != nil {
			return entities.Client{}, err
		}
		items = append(items, notExists(guard))
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if isTxConflict(err) {
			return entities.Client{}, entities.ErrClientExists
		}
		return entities.Client{}, err
	}
	return c, nil
}

func (r *ClientDynamoRepository) GetByID(ctx context.Context, id string) (entities.Client, error) {
	return getClient(ctx, r.ddb, r.tableName, id)
}

// List scans the table, skipping CPF guards, and orders the result by name.
func (r *ClientDynamoRepository) List(ctx context.Context, filter entities.ClientFilter) ([]entities.Client, error) {
	clients := []entities.Client{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:                aws.String(r.tableName),
			ExclusiveStartKey:        startKey,
			ConsistentRead:           aws.Bool(true),
			FilterExpression:         aws.String("NOT begins_with(#id, :guard)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":guard": &types.AttributeValueMemberS{Value: cpfGuardPrefix},
			},
		})
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			c, err := unmarshalClient(raw)
			if err != nil {
				return nil, err
			}
			if filter.Matches(c) {
				clients = append(clients, c)
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sort.SliceStable(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

// UpdateDetails never touches the CPF. A missing client yields a zero value.
func (r *ClientDynamoRepository) UpdateDetails(ctx context.Context, id string, d entities.ClientDetails, now time.Time) (entities.Client, error) {
	if strings.HasPrefix(id, cpfGuardPrefix) {
		return entities.Client{}, nil
	}
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
	if d.Email != nil {
		set("email", *d.Email)
	}
	if d.Phone != nil {
		set("phone", *d.Phone)
	}
	if d.City != nil {
		set("city", *d.City)
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
			return entities.Client{}, nil
		}
		return entities.Client{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Client{}, nil
	}
	return unmarshalClient(out.Attributes)
}

func getClient(ctx context.Context, ddb DynamoDBAPI, table, id string) (entities.Client, error) {
	if strings.HasPrefix(id, cpfGuardPrefix) {
		return entities.Client{}, nil
	}
	out, err := ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Client{}, err
	}
	if len(out.Item) == 0 {
		return entities.Client{}, nil
	}
	return unmarshalClient(out.Item)
}

func unmarshalClient(raw map[string]types.AttributeValue) (entities.Client, error) {
	var it clientItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return entities.Client{}, err
	}
	return entities.Client{
		ID:        it.ID,
		Name:      it.Name,
		CPF:       it.CPF,
		Email:     it.Email,
		Phone:     it.Phone,
		City:      it.City,
		CreatedAt: parseTime(it.CreatedAt),
		UpdatedAt: parseTime(it.UpdatedAt),
	}, nil
}

func toClientItem(c entities.Client) clientItem {
	return clientItem{
		ID:        c.ID,
		Name:      c.Name,
		CPF:       c.CPF,
		Email:     c.Email,
		Phone:     c.Phone,
		City:      c.City,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}
