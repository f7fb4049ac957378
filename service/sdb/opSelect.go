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
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/simpledb"

	"github.com/fogfish/sdbrec"
)

// Select executes one select round-trip, returning the page of rows and
// the continuation token of the store.
func (db *Storage) Select(ctx context.Context, q *sdbrec.SelectQuery) (*sdbrec.Page, error) {
	val, err := db.service.SelectWithContext(ctx, db.reqSelect(q))
	if err != nil {
		return nil, errServiceIO.New(err)
	}

	page := &sdbrec.Page{
		Items: make([]sdbrec.Item, 0, len(val.Items)),
		Token: aws.StringValue(val.NextToken),
	}

	for _, item := range val.Items {
		page.Items = append(page.Items, sdbrec.Item{
			Name:  aws.StringValue(item.Name),
			Attrs: attrsOf(item.Attributes),
		})
	}

	return page, nil
}

// SelectCount executes one count round-trip. The scalar is partial when
// the store returns a continuation token, the caller decides whether to
// continue counting or to use the token as an offset.
func (db *Storage) SelectCount(ctx context.Context, q *sdbrec.SelectQuery) (*sdbrec.CountPage, error) {
	val, err := db.service.SelectWithContext(ctx, db.reqSelect(q))
	if err != nil {
		return nil, errServiceIO.New(err)
	}

	count := int64(0)
	for _, item := range val.Items {
		for _, a := range item.Attributes {
			if aws.StringValue(a.Name) != "Count" {
				continue
			}

			v, err := strconv.ParseInt(aws.StringValue(a.Value), 10, 64)
			if err != nil {
				return nil, errServiceIO.New(
					fmt.Errorf("malformed count %q: %w", aws.StringValue(a.Value), err))
			}
			count += v
		}
	}

	return &sdbrec.CountPage{
		Count: count,
		Token: aws.StringValue(val.NextToken),
	}, nil
}

func (db *Storage) reqSelect(q *sdbrec.SelectQuery) *simpledb.SelectInput {
	req := &simpledb.SelectInput{
		SelectExpression: aws.String(q.Expr),
	}
	if q.Token != "" {
		req.NextToken = aws.String(q.Token)
	}
	if q.Consistent {
		req.ConsistentRead = aws.Bool(true)
	}
	return req
}
