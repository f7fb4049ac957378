//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package sdb

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/simpledb"
	"github.com/fogfish/faults"
)

const (
	errServiceIO     = faults.Type("service i/o failed")
	errInvalidEntity = faults.Type("invalid entity")
)

// recover AWS error code
func recoverCode(err error, code string) bool {
	var e awserr.Error

	ok := errors.As(err, &e)
	return ok && e.Code() == code
}

func recoverNoSuchDomain(err error) bool {
	return recoverCode(err, simpledb.ErrCodeNoSuchDomain)
}
