//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

/*
Package sdbtest implements mocks of the SimpleDB API for unit testing of
the storage service and applications built on it.
*/
package sdbtest

import (
	"errors"
	"reflect"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/simpledb"

	"github.com/fogfish/sdbrec/service/sdb"
)

/*

mock factory
*/
func mock(m sdb.SimpleDB) *sdb.Storage {
	return sdb.Must(sdb.New(sdb.WithService(m)))
}

// Item builds the wire representation of the item
func Item(name string, attrs map[string]string) *simpledb.Item {
	seq := make([]*simpledb.Attribute, 0, len(attrs))
	for key, val := range attrs {
		seq = append(seq, &simpledb.Attribute{
			Name:  aws.String(key),
			Value: aws.String(val),
		})
	}

	return &simpledb.Item{Name: aws.String(name), Attributes: seq}
}

// CountItem builds the wire representation of the select count(*) response
func CountItem(count int64) *simpledb.Item {
	return &simpledb.Item{
		Name: aws.String("Domain"),
		Attributes: []*simpledb.Attribute{
			{Name: aws.String("Count"), Value: aws.String(strconv.FormatInt(count, 10))},
		},
	}
}

/*

Select mock
*/
func Select(
	expectExpr string,
	returnItems []*simpledb.Item,
	returnToken *string,
) *sdb.Storage {
	return mock(&sdbSelect{
		expectExpr:  expectExpr,
		returnItems: returnItems,
		returnToken: returnToken,
	})
}

type sdbSelect struct {
	sdb.SimpleDB
	expectExpr  string
	returnItems []*simpledb.Item
	returnToken *string
}

func (mock *sdbSelect) SelectWithContext(ctx aws.Context, input *simpledb.SelectInput, opts ...request.Option) (*simpledb.SelectOutput, error) {
	if aws.StringValue(input.SelectExpression) != mock.expectExpr {
		return nil, errors.New("Unexpected select expression.")
	}

	return &simpledb.SelectOutput{
		Items:     mock.returnItems,
		NextToken: mock.returnToken,
	}, nil
}

/*

GetAttributes mock
*/
func GetAttributes(
	expectName string,
	returnVal map[string]string,
) *sdb.Storage {
	return mock(&sdbGetAttributes{expectName: expectName, returnVal: returnVal})
}

type sdbGetAttributes struct {
	sdb.SimpleDB
	expectName string
	returnVal  map[string]string
}

func (mock *sdbGetAttributes) GetAttributesWithContext(ctx aws.Context, input *simpledb.GetAttributesInput, opts ...request.Option) (*simpledb.GetAttributesOutput, error) {
	if aws.StringValue(input.ItemName) != mock.expectName {
		return nil, errors.New("Unexpected entity.")
	}

	seq := make([]*simpledb.Attribute, 0, len(mock.returnVal))
	for key, val := range mock.returnVal {
		seq = append(seq, &simpledb.Attribute{
			Name:  aws.String(key),
			Value: aws.String(val),
		})
	}

	return &simpledb.GetAttributesOutput{Attributes: seq}, nil
}

/*

PutAttributes mock
*/
func PutAttributes(
	expectName string,
	expectVal map[string]string,
) *sdb.Storage {
	return mock(&sdbPutAttributes{expectName: expectName, expectVal: expectVal})
}

type sdbPutAttributes struct {
	sdb.SimpleDB
	expectName string
	expectVal  map[string]string
}

func (mock *sdbPutAttributes) PutAttributesWithContext(ctx aws.Context, input *simpledb.PutAttributesInput, opts ...request.Option) (*simpledb.PutAttributesOutput, error) {
	if aws.StringValue(input.ItemName) != mock.expectName {
		return nil, errors.New("Unexpected entity.")
	}

	attrs := map[string]string{}
	for _, a := range input.Attributes {
		if !aws.BoolValue(a.Replace) {
			return nil, errors.New("Unexpected append write.")
		}
		attrs[aws.StringValue(a.Name)] = aws.StringValue(a.Value)
	}

	if !reflect.DeepEqual(attrs, mock.expectVal) {
		return nil, errors.New("Unexpected entity.")
	}

	return &simpledb.PutAttributesOutput{}, nil
}

/*

DeleteAttributes mock
*/
func DeleteAttributes(expectName string) *sdb.Storage {
	return mock(&sdbDeleteAttributes{expectName: expectName})
}

type sdbDeleteAttributes struct {
	sdb.SimpleDB
	expectName string
}

func (mock *sdbDeleteAttributes) DeleteAttributesWithContext(ctx aws.Context, input *simpledb.DeleteAttributesInput, opts ...request.Option) (*simpledb.DeleteAttributesOutput, error) {
	if aws.StringValue(input.ItemName) != mock.expectName {
		return nil, errors.New("Unexpected entity.")
	}

	return &simpledb.DeleteAttributesOutput{}, nil
}

/*

Domain administration mock
*/
func Domains(expectDomain string) *sdb.Storage {
	return mock(&sdbDomains{expectDomain: expectDomain})
}

type sdbDomains struct {
	sdb.SimpleDB
	expectDomain string
}

func (mock *sdbDomains) CreateDomainWithContext(ctx aws.Context, input *simpledb.CreateDomainInput, opts ...request.Option) (*simpledb.CreateDomainOutput, error) {
	if aws.StringValue(input.DomainName) != mock.expectDomain {
		return nil, errors.New("Unexpected domain.")
	}

	return &simpledb.CreateDomainOutput{}, nil
}

func (mock *sdbDomains) DeleteDomainWithContext(ctx aws.Context, input *simpledb.DeleteDomainInput, opts ...request.Option) (*simpledb.DeleteDomainOutput, error) {
	if aws.StringValue(input.DomainName) != mock.expectDomain {
		return nil, errors.New("Unexpected domain.")
	}

	return &simpledb.DeleteDomainOutput{}, nil
}
