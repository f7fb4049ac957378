//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

/*
Package sdb implements the storage service of the library over AWS
SimpleDB, translating select round-trips, single item access and domain
administration into the SimpleDB API.
*/
package sdb

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/simpledb"

	"github.com/fogfish/sdbrec"
)

// Storage is the SimpleDB implementation of sdbrec.Service
type Storage struct {
	service SimpleDB
}

var _ sdbrec.Service = (*Storage)(nil)

// New creates the instance of the SimpleDB storage service. Without
// WithService it builds the client from the ambient AWS configuration.
func New(opts ...Option) (*Storage, error) {
	conf := defaultOptions()
	for _, opt := range opts {
		opt(conf)
	}

	service := conf.service
	if service == nil {
		spec := aws.NewConfig()
		if conf.region != "" {
			spec = spec.WithRegion(conf.region)
		}

		aws, err := session.NewSession(spec)
		if err != nil {
			return nil, errServiceIO.New(err)
		}
		service = simpledb.New(aws)
	}

	return &Storage{service: service}, nil
}

// Must panics on the construction error
func Must(db *Storage, err error) *Storage {
	if err != nil {
		panic(err)
	}
	return db
}

func attrsOf(seq []*simpledb.Attribute) sdbrec.Attributes {
	attrs := make(sdbrec.Attributes, len(seq))
	for _, a := range seq {
		// multi-valued attributes collapse, the last value wins
		attrs[aws.StringValue(a.Name)] = aws.StringValue(a.Value)
	}
	return attrs
}
