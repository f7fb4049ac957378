//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

/*
Package ddb implements the cache backend over a DynamoDB table, a shared
cache tier for fleets that do not operate memcached. The table is keyed
by the domain/name composite, the snapshot is stored as a map attribute.
Expired items are treated as misses before the DynamoDB collector
removes them.
*/
package ddb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fogfish/faults"

	"github.com/fogfish/sdbrec"
)

const (
	errBackendIO      = faults.Type("dynamodb i/o failed")
	errUndefinedCache = faults.Type("undefined cache table")
)

const (
	attrKey = "key"
	attrVal = "val"
	attrTTL = "ttl"
)

// Cache is the DynamoDB implementation of sdbrec.Cache
type Cache struct {
	service DynamoDB
	table   string
	ttl     time.Duration
}

var _ sdbrec.Cache = (*Cache)(nil)

// New creates the DynamoDB cache backend. Without WithService it builds
// the client from the ambient AWS configuration.
func New(opts ...Option) (*Cache, error) {
	conf := defaultOptions()
	for _, opt := range opts {
		opt(conf)
	}

	if conf.table == "" {
		return nil, errUndefinedCache.New(fmt.Errorf("use WithTable"))
	}

	service := conf.service
	if service == nil {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errBackendIO.New(err)
		}
		service = dynamodb.NewFromConfig(cfg)
	}

	return &Cache{service: service, table: conf.table, ttl: conf.ttl}, nil
}

// Must panics on the construction error
func Must(c *Cache, err error) *Cache {
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks up the snapshot, sdbrec.ErrCacheMiss for unknown keys
func (c *Cache) Get(ctx context.Context, domain, name string) (sdbrec.Attributes, error) {
	req := &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key:       keyOf(domain, name),
	}

	val, err := c.service.GetItem(ctx, req)
	if err != nil {
		return nil, errBackendIO.New(err)
	}

	if len(val.Item) == 0 || isExpired(val.Item) {
		return nil, sdbrec.ErrCacheMiss
	}

	attrs := sdbrec.Attributes{}
	if gen, has := val.Item[attrVal]; has {
		if err := attributevalue.Unmarshal(gen, &attrs); err != nil {
			return nil, errBackendIO.New(err)
		}
	}
	if attrs == nil {
		attrs = sdbrec.Attributes{}
	}

	return attrs, nil
}

// Put stores the snapshot
func (c *Cache) Put(ctx context.Context, domain, name string, attrs sdbrec.Attributes) error {
	if attrs == nil {
		attrs = sdbrec.Attributes{}
	}

	gen, err := attributevalue.Marshal(map[string]string(attrs))
	if err != nil {
		return errBackendIO.New(err)
	}

	item := map[string]types.AttributeValue{
		attrKey: &types.AttributeValueMemberS{Value: domain + "/" + name},
		attrVal: gen,
	}
	if c.ttl > 0 {
		item[attrTTL] = &types.AttributeValueMemberN{
			Value: strconv.FormatInt(time.Now().Add(c.ttl).Unix(), 10),
		}
	}

	req := &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	}

	if _, err := c.service.PutItem(ctx, req); err != nil {
		return errBackendIO.New(err)
	}

	return nil
}

// Del evicts the snapshot, unknown keys are ignored
func (c *Cache) Del(ctx context.Context, domain, name string) error {
	req := &dynamodb.DeleteItemInput{
		TableName: aws.String(c.table),
		Key:       keyOf(domain, name),
	}

	if _, err := c.service.DeleteItem(ctx, req); err != nil {
		return errBackendIO.New(err)
	}

	return nil
}

func keyOf(domain, name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrKey: &types.AttributeValueMemberS{Value: domain + "/" + name},
	}
}

func isExpired(item map[string]types.AttributeValue) bool {
	gen, has := item[attrTTL]
	if !has {
		return false
	}

	n, ok := gen.(*types.AttributeValueMemberN)
	if !ok {
		return false
	}

	epoch, err := strconv.ParseInt(n.Value, 10, 64)
	return err == nil && epoch <= time.Now().Unix()
}
