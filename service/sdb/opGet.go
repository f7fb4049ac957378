//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package sdb

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/simpledb"

	"github.com/fogfish/sdbrec"
)

// Get reads the attributes of one item. An item without attributes does
// not exist, SimpleDB keeps no tombstones.
func (db *Storage) Get(ctx context.Context, domain, name string, consistent bool) (sdbrec.Attributes, error) {
	req := &simpledb.GetAttributesInput{
		DomainName: aws.String(domain),
		ItemName:   aws.String(name),
	}
	if consistent {
		req.ConsistentRead = aws.Bool(true)
	}

	val, err := db.service.GetAttributesWithContext(ctx, req)
	if err != nil {
		if recoverNoSuchDomain(err) {
			return nil, sdbrec.NotFound{Domain: domain, Name: name}
		}
		return nil, errServiceIO.New(err)
	}

	if len(val.Attributes) == 0 {
		return nil, sdbrec.NotFound{Domain: domain, Name: name}
	}

	return attrsOf(val.Attributes), nil
}
