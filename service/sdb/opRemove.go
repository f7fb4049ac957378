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
)

// Remove deletes the item. Deleting all attributes deletes the item, the
// operation is idempotent.
func (db *Storage) Remove(ctx context.Context, domain, name string) error {
	req := &simpledb.DeleteAttributesInput{
		DomainName: aws.String(domain),
		ItemName:   aws.String(name),
	}

	if _, err := db.service.DeleteAttributesWithContext(ctx, req); err != nil {
		return errServiceIO.New(err)
	}

	return nil
}
