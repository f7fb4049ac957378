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

// CreateDomain creates the domain, idempotent
func (db *Storage) CreateDomain(ctx context.Context, domain string) error {
	req := &simpledb.CreateDomainInput{
		DomainName: aws.String(domain),
	}

	if _, err := db.service.CreateDomainWithContext(ctx, req); err != nil {
		return errServiceIO.New(err)
	}

	return nil
}

// RemoveDomain deletes the domain and every item it holds
func (db *Storage) RemoveDomain(ctx context.Context, domain string) error {
	req := &simpledb.DeleteDomainInput{
		DomainName: aws.String(domain),
	}

	if _, err := db.service.DeleteDomainWithContext(ctx, req); err != nil {
		return errServiceIO.New(err)
	}

	return nil
}
