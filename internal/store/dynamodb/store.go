// Package dynamodb is the score ledger on an Amazon DynamoDB table keyed by
// user_id. Counters are updated with ADD expressions, so concurrent answers
// from the same user never lose an increment.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pavelanni/slackquiz/internal/model"
)

const (
	attrUserID  = "user_id"
	attrCorrect = "score"
	attrTotal   = "total_questions"
	attrUpdated = "last_updated"

	updateExpression = "ADD " + attrCorrect + " :inc, " + attrTotal + " :one SET " + attrUpdated + " = :ts"
)

// API is the subset of the DynamoDB client used by Store.
type API interface {
	dynamodb.ScanAPIClient
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store is a DynamoDB-backed score ledger.
type Store struct {
	api   API
	table string
}

func New(api API, table string) *Store {
	return &Store{api: api, table: table}
}

// Connect creates a Store using the default AWS credential chain.
func Connect(ctx context.Context, region, table string) (*Store, error) {
	if table == "" {
		return nil, errors.New("dynamodb table name is empty")
	}
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(dynamodb.NewFromConfig(cfg), table), nil
}

// Increment applies d with a single UpdateItem call and returns the item as
// written.
func (s *Store) Increment(ctx context.Context, userID string, d model.ScoreDelta) (model.ScoreRecord, error) {
	out, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrUserID: &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression: aws.String(updateExpression),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": number(d.Correct),
			":one": number(d.Total),
			":ts":  number(d.At.Unix()),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("increment %s: %w", userID, err)
	}
	return decode(out.Attributes)
}

// ScanAll reads the whole table and returns the records ordered by user id.
func (s *Store) ScanAll(ctx context.Context) ([]model.ScoreRecord, error) {
	var records []model.ScoreRecord
	p := dynamodb.NewScanPaginator(s.api, &dynamodb.ScanInput{TableName: aws.String(s.table)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		for _, item := range page.Items {
			r, err := decode(item)
			if err != nil {
				return nil, err
			}
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].UserID < records[j].UserID })
	return records, nil
}

func number(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

func decode(item map[string]types.AttributeValue) (model.ScoreRecord, error) {
	id, ok := item[attrUserID].(*types.AttributeValueMemberS)
	if !ok {
		return model.ScoreRecord{}, fmt.Errorf("score item without %s", attrUserID)
	}
	r := model.ScoreRecord{UserID: id.Value}
	var err error
	if r.Correct, err = intAttr(item, attrCorrect); err != nil {
		return r, fmt.Errorf("score %s: %w", id.Value, err)
	}
	if r.Total, err = intAttr(item, attrTotal); err != nil {
		return r, fmt.Errorf("score %s: %w", id.Value, err)
	}
	ts, err := intAttr(item, attrUpdated)
	if err != nil {
		return r, fmt.Errorf("score %s: %w", id.Value, err)
	}
	r.LastUpdated = time.Unix(ts, 0)
	return r, nil
}

// intAttr reads a numeric attribute. A missing attribute is zero.
func intAttr(item map[string]types.AttributeValue, name string) (int64, error) {
	v, ok := item[name]
	if !ok {
		return 0, nil
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("attribute %s is %T, not a number", name, v)
	}
	i, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	return i, nil
}
