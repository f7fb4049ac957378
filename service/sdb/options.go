//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package sdb

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/simpledb"
)

// SimpleDB declares the interface of the original AWS SimpleDB API used by
// the library
type SimpleDB interface {
	SelectWithContext(aws.Context, *simpledb.SelectInput, ...request.Option) (*simpledb.SelectOutput, error)
	GetAttributesWithContext(aws.Context, *simpledb.GetAttributesInput, ...request.Option) (*simpledb.GetAttributesOutput, error)
	PutAttributesWithContext(aws.Context, *simpledb.PutAttributesInput, ...request.Option) (*simpledb.PutAttributesOutput, error)
	DeleteAttributesWithContext(aws.Context, *simpledb.DeleteAttributesInput, ...request.Option) (*simpledb.DeleteAttributesOutput, error)
	CreateDomainWithContext(aws.Context, *simpledb.CreateDomainInput, ...request.Option) (*simpledb.CreateDomainOutput, error)
	DeleteDomainWithContext(aws.Context, *simpledb.DeleteDomainInput, ...request.Option) (*simpledb.DeleteDomainOutput, error)
}

// Option type to configure the SimpleDB
type Option func(*Options)

// Config Options
type Options struct {
	region  string
	service SimpleDB
}

func defaultOptions() *Options {
	return &Options{}
}

// WithRegion defines the AWS region of the SimpleDB endpoint
func WithRegion(region string) Option {
	return func(c *Options) {
		c.region = region
	}
}

// Configure AWS Service for the storage instance
func WithService(service SimpleDB) Option {
	return func(c *Options) {
		c.service = service
	}
}
