package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"voicetest-engine/internal/domain"
)

// defaultTTL bounds how long a seeded conversation record outlives its
// test run before DynamoDB expires it.
const defaultTTL = time.Hour

// Sentinel errors surfaced to callers. ErrConflict reports a lost
// compare-and-swap on the cursor; the caller must treat the event as
// already processed, not as a failure.
var (
	ErrNotFound = errors.New("repository: conversation not found")
	ErrConflict = errors.New("repository: cursor advanced concurrently")
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Client wraps the DynamoDB table holding one state record per scripted
// conversation.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func stateKey(conversationID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"conversation_id": &types.AttributeValueMemberS{Value: conversationID},
	}
}

// Get reads the conversation record. The read is strongly consistent: a
// stale cursor would replay a step that already executed.
func (c *Client) Get(ctx context.Context, conversationID string) (domain.ConversationState, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.tableName),
		Key:            stateKey(conversationID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.ConversationState{}, fmt.Errorf("repository: Get: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.ConversationState{}, ErrNotFound
	}
	return itemToState(out.Item), nil
}

// AdvanceState moves the cursor and status, conditioned on the previously
// observed cursor. A duplicate or concurrent invocation that already
// advanced the record surfaces as ErrConflict.
func (c *Client) AdvanceState(ctx context.Context, conversationID string, expectedIndex, newIndex int, newStatus domain.Status) error {
	_, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(c.tableName),
		Key:                      stateKey(conversationID),
		UpdateExpression:         aws.String("SET current_step_index = :i, #s = :st"),
		ConditionExpression:      aws.String("current_step_index = :expected"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":i":        &types.AttributeValueMemberN{Value: strconv.Itoa(newIndex)},
			":st":       &types.AttributeValueMemberS{Value: string(newStatus)},
			":expected": &types.AttributeValueMemberN{Value: strconv.Itoa(expectedIndex)},
		},
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return ErrConflict
		}
		return fmt.Errorf("repository: AdvanceState: %w", err)
	}
	return nil
}

// SeedParams describes a conversation record created ahead of a test call.
type SeedParams struct {
	ConversationID   string
	Script           domain.Script
	TestName         string
	PreSetAttributes map[string]string
	TTL              time.Duration
}

// Seed creates the conversation record with status READY and cursor 0.
// An existing record with the same id is never overwritten.
func (c *Client) Seed(ctx context.Context, p SeedParams) error {
	if strings.TrimSpace(p.ConversationID) == "" {
		return errors.New("repository: Seed: conversation id is required")
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	scriptJSON, err := json.Marshal(p.Script)
	if err != nil {
		return fmt.Errorf("repository: Seed: encode script: %w", err)
	}

	now := time.Now().UTC()
	item := map[string]types.AttributeValue{
		"conversation_id":    &types.AttributeValueMemberS{Value: p.ConversationID},
		"script":             &types.AttributeValueMemberS{Value: string(scriptJSON)},
		"current_step_index": &types.AttributeValueMemberN{Value: "0"},
		"status":             &types.AttributeValueMemberS{Value: string(domain.StatusReady)},
		"ttl":                &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(ttl).Unix(), 10)},
		"created_at":         &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"test_name":          &types.AttributeValueMemberS{Value: p.TestName},
	}
	if len(p.PreSetAttributes) > 0 {
		attrsJSON, err := json.Marshal(p.PreSetAttributes)
		if err != nil {
			return fmt.Errorf("repository: Seed: encode pre-set attributes: %w", err)
		}
		item["pre_set_attributes"] = &types.AttributeValueMemberS{Value: string(attrsJSON)}
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(conversation_id)"),
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return fmt.Errorf("repository: Seed: conversation %q already exists", p.ConversationID)
		}
		return fmt.Errorf("repository: Seed: %w", err)
	}
	return nil
}

// Delete removes the conversation record. Deleting an absent record is not
// an error.
func (c *Client) Delete(ctx context.Context, conversationID string) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       stateKey(conversationID),
	})
	if err != nil {
		return fmt.Errorf("repository: Delete: %w", err)
	}
	return nil
}

// SetPreAttributes stores the attributes surfaced into the call's attribute
// bag when the call is answered. The record must already be seeded.
func (c *Client) SetPreAttributes(ctx context.Context, conversationID string, attrs map[string]string) error {
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("repository: SetPreAttributes: encode: %w", err)
	}
	_, err = c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(c.tableName),
		Key:                 stateKey(conversationID),
		UpdateExpression:    aws.String("SET pre_set_attributes = :a"),
		ConditionExpression: aws.String("attribute_exists(conversation_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: string(attrsJSON)},
		},
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return ErrNotFound
		}
		return fmt.Errorf("repository: SetPreAttributes: %w", err)
	}
	return nil
}

// itemToState decodes a DynamoDB item tolerantly: missing or malformed
// attributes read as zero values so a damaged record degrades to a no-op
// conversation instead of failing the invocation.
func itemToState(item map[string]types.AttributeValue) domain.ConversationState {
	id, _ := strAttr(item, "conversation_id")
	state := domain.ConversationState{
		ConversationID:   id,
		CurrentStepIndex: intAttr(item, "current_step_index"),
		Status:           parseStatusAttr(item),
		ExpiresAt:        int64Attr(item, "ttl"),
	}
	state.CreatedAt, _ = strAttr(item, "created_at")
	state.TestName, _ = strAttr(item, "test_name")

	if raw, ok := strAttr(item, "script"); ok {
		script, err := domain.DecodeScript(raw)
		if err != nil {
			slog.Warn("malformed script in state record, treating as empty",
				"conversation_id", id, "err", err)
		}
		state.Script = script
	}

	if raw, ok := strAttr(item, "pre_set_attributes"); ok && raw != "" {
		var attrs map[string]string
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			slog.Warn("malformed pre-set attributes in state record, ignoring",
				"conversation_id", id, "err", err)
		} else {
			state.PreSetAttributes = attrs
		}
	}
	return state
}

func parseStatusAttr(item map[string]types.AttributeValue) domain.Status {
	s, _ := strAttr(item, "status")
	return domain.ParseStatus(s)
}

func strAttr(item map[string]types.AttributeValue, key string) (string, bool) {
	v, ok := item[key]
	if !ok {
		return "", false
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func intAttr(item map[string]types.AttributeValue, key string) int {
	return int(int64Attr(item, key))
}

func int64Attr(item map[string]types.AttributeValue, key string) int64 {
	v, ok := item[key]
	if !ok {
		return 0
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
