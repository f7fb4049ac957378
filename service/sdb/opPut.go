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
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/simpledb"

	"github.com/fogfish/sdbrec"
)

// Put replaces the listed attributes of the item
func (db *Storage) Put(ctx context.Context, domain, name string, attrs sdbrec.Attributes) error {
	if len(attrs) == 0 {
		return errInvalidEntity.New(fmt.Errorf("no attributes for %s/%s", domain, name))
	}

	seq := make([]*simpledb.ReplaceableAttribute, 0, len(attrs))
	for key, val := range attrs {
		seq = append(seq, &simpledb.ReplaceableAttribute{
			Name:    aws.String(key),
			Value:   aws.String(val),
			Replace: aws.Bool(true),
		})
	}

	req := &simpledb.PutAttributesInput{
		DomainName: aws.String(domain),
		ItemName:   aws.String(name),
		Attributes: seq,
	}

	if _, err := db.service.PutAttributesWithContext(ctx, req); err != nil {
		return errServiceIO.New(err)
	}

	return nil
}
