//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package ddb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDB declares the subset of the AWS DynamoDB API used by the
// backend
type DynamoDB interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Option type to configure the cache
type Option func(*Options)

// Config Options
type Options struct {
	table   string
	service DynamoDB
	ttl     time.Duration
}

func defaultOptions() *Options {
	return &Options{}
}

// WithTable defines the DynamoDB table holding the snapshots
func WithTable(table string) Option {
	return func(c *Options) {
		c.table = table
	}
}

// WithService injects the DynamoDB client, use it to mock the backend
func WithService(service DynamoDB) Option {
	return func(c *Options) {
		c.service = service
	}
}

// WithTTL defines the lifetime of cached snapshots, written as the epoch
// attribute for the DynamoDB time to live collector
func WithTTL(ttl time.Duration) Option {
	return func(c *Options) {
		c.ttl = ttl
	}
}
