//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package sdbrec_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fogfish/it"

	"github.com/fogfish/sdbrec"
)

//
// fixtures
//

type Person struct {
	sdbrec.ID
	Name    string `sdb:"name"`
	Age     int    `sdb:"age"`
	Address string `sdb:"address"`
}

func persons(service sdbrec.Service, cache sdbrec.Cache) *sdbrec.Domain[Person] {
	return sdbrec.Must(sdbrec.New[Person](
		sdbrec.WithDomain("person"),
		sdbrec.WithService(service),
		sdbrec.WithCache(cache),
	))
}

func wireVerner() sdbrec.Attributes {
	return sdbrec.Attributes{
		"name":    "Verner Pleishner",
		"age":     "09223372036854775872",
		"address": "Blumenstrasse 14, Berne, 3013",
	}
}

func row(name string, attrs sdbrec.Attributes) sdbrec.Item {
	return sdbrec.Item{Name: name, Attrs: attrs}
}

//
// scripted storage service
//

type fakeService struct {
	pages   []*sdbrec.Page
	counts  []*sdbrec.CountPage
	queries []*sdbrec.SelectQuery
	countQs []*sdbrec.SelectQuery

	items   map[string]sdbrec.Attributes
	puts    map[string]sdbrec.Attributes
	removes []string
	domains []string

	failSelect error
	failGet    error
	failPut    error
	failRemove error
}

func newFakeService() *fakeService {
	return &fakeService{
		items: map[string]sdbrec.Attributes{},
		puts:  map[string]sdbrec.Attributes{},
	}
}

func (s *fakeService) Select(ctx context.Context, q *sdbrec.SelectQuery) (*sdbrec.Page, error) {
	cp := *q
	s.queries = append(s.queries, &cp)

	if s.failSelect != nil {
		return nil, s.failSelect
	}
	if len(s.pages) == 0 {
		return &sdbrec.Page{}, nil
	}

	page := s.pages[0]
	s.pages = s.pages[1:]
	return page, nil
}

func (s *fakeService) SelectCount(ctx context.Context, q *sdbrec.SelectQuery) (*sdbrec.CountPage, error) {
	cp := *q
	s.countQs = append(s.countQs, &cp)

	if s.failSelect != nil {
		return nil, s.failSelect
	}
	if len(s.counts) == 0 {
		return &sdbrec.CountPage{}, nil
	}

	cnt := s.counts[0]
	s.counts = s.counts[1:]
	return cnt, nil
}

func (s *fakeService) Get(ctx context.Context, domain, name string, consistent bool) (sdbrec.Attributes, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}

	attrs, has := s.items[name]
	if !has {
		return nil, sdbrec.NotFound{Domain: domain, Name: name}
	}
	return attrs, nil
}

func (s *fakeService) Put(ctx context.Context, domain, name string, attrs sdbrec.Attributes) error {
	if s.failPut != nil {
		return s.failPut
	}

	s.puts[name] = attrs
	return nil
}

func (s *fakeService) Remove(ctx context.Context, domain, name string) error {
	if s.failRemove != nil {
		return s.failRemove
	}

	s.removes = append(s.removes, name)
	return nil
}

func (s *fakeService) CreateDomain(ctx context.Context, domain string) error {
	s.domains = append(s.domains, "create "+domain)
	return nil
}

func (s *fakeService) RemoveDomain(ctx context.Context, domain string) error {
	s.domains = append(s.domains, "remove "+domain)
	return nil
}

// compiled drives the cursor once and returns the select expression the
// service received
func compiled(service *fakeService, rs *sdbrec.ResultSet) (string, error) {
	_, err := rs.Next(context.Background())
	if err != nil && !errors.Is(err, sdbrec.EOS{}) {
		return "", err
	}
	if len(service.queries) == 0 {
		return "", fmt.Errorf("no query issued")
	}
	return service.queries[len(service.queries)-1].Expr, nil
}

//
// iteration
//

func TestNextIsLazy(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner()), row("P2", wireVerner())}},
	}
	db := persons(service, nil)

	rs := db.Find()
	it.Ok(t).If(len(service.queries)).Equal(0)

	p1, err1 := rs.Next(context.Background())
	p2, err2 := rs.Next(context.Background())
	_, eos1 := rs.Next(context.Background())
	_, eos2 := rs.Next(context.Background())

	it.Ok(t).
		IfNil(err1).
		IfNil(err2).
		If(p1.ItemName()).Equal("P1").
		If(p2.ItemName()).Equal("P2").
		If(p1.(*Person).Name).Equal("Verner Pleishner").
		If(p1.(*Person).Age).Equal(64).
		IfTrue(errors.Is(eos1, sdbrec.EOS{})).
		IfTrue(errors.Is(eos2, sdbrec.EOS{})).
		If(len(service.queries)).Equal(1)
}

func TestNextRefetch(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner()), row("P2", wireVerner())}, Token: "t1"},
		{Items: []sdbrec.Item{row("P3", wireVerner())}},
	}
	db := persons(service, nil)

	rs := db.Find()
	rs.Next(context.Background())
	rs.Next(context.Background())

	it.Ok(t).
		If(rs.Token()).Equal("t1").
		If(len(service.queries)).Equal(1)

	p3, err := rs.Next(context.Background())
	_, eos := rs.Next(context.Background())

	it.Ok(t).
		IfNil(err).
		If(p3.ItemName()).Equal("P3").
		IfTrue(errors.Is(eos, sdbrec.EOS{})).
		If(len(service.queries)).Equal(2).
		If(service.queries[1].Token).Equal("t1")
}

func TestNextSkipsEmptyPage(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Token: "t1"},
		{Items: []sdbrec.Item{row("P1", wireVerner())}},
	}
	db := persons(service, nil)

	p1, err := db.Find().Next(context.Background())

	it.Ok(t).
		IfNil(err).
		If(p1.ItemName()).Equal("P1").
		If(len(service.queries)).Equal(2)
}

func TestLimitFollowsToken(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner())}, Token: "t1"},
		{Items: []sdbrec.Item{row("P2", wireVerner())}},
	}
	db := persons(service, nil)

	rs := db.Find().Limit(2)

	p1, err1 := rs.Next(context.Background())

	it.Ok(t).
		IfNil(err1).
		If(p1.ItemName()).Equal("P1").
		If(rs.Token()).Equal("t1")

	p2, err2 := rs.Next(context.Background())
	_, eos := rs.Next(context.Background())

	it.Ok(t).
		IfNil(err2).
		If(p2.ItemName()).Equal("P2").
		IfTrue(errors.Is(eos, sdbrec.EOS{})).
		If(len(service.queries)).Equal(2).
		If(service.queries[0].Expr).Equal("select * from `person` limit 2").
		If(service.queries[1].Expr).Equal("select * from `person` limit 2").
		If(service.queries[1].Token).Equal("t1")
}

func TestContinueResumesFromToken(t *testing.T) {
	service := newFakeService()
	db := persons(service, nil)

	db.Find().Continue("t0").Next(context.Background())

	it.Ok(t).
		If(service.queries[0].Token).Equal("t0")
}

func TestConsistentRead(t *testing.T) {
	service := newFakeService()
	db := persons(service, nil)

	db.Find().Consistent().Next(context.Background())

	it.Ok(t).
		IfTrue(service.queries[0].Consistent)
}

func TestSelectFailureIsSticky(t *testing.T) {
	service := newFakeService()
	service.failSelect = errors.New("service i/o failed")
	db := persons(service, nil)

	rs := db.Find()
	_, err1 := rs.Next(context.Background())
	_, err2 := rs.Next(context.Background())

	it.Ok(t).
		IfNotNil(err1).
		IfNotNil(rs.Error()).
		If(err2).Equal(err1).
		If(len(service.queries)).Equal(1)
}

func TestCompileFailureIsSticky(t *testing.T) {
	service := newFakeService()
	db := persons(service, nil)

	rs := db.Find(sdbrec.In("name"))
	_, err := rs.Next(context.Background())

	it.Ok(t).
		IfNotNil(err).
		IfNotNil(rs.Error()).
		If(len(service.queries)).Equal(0)
}

func TestFMap(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner()), row("P2", wireVerner())}, Token: "t1"},
		{Items: []sdbrec.Item{row("P3", wireVerner())}},
	}
	db := persons(service, nil)

	seq := sdbrec.Records{}
	err := db.Find().FMap(context.Background(), seq.Join)

	it.Ok(t).
		IfNil(err).
		If(len(seq)).Equal(3).
		If(seq[0].ItemName()).Equal("P1").
		If(seq[2].ItemName()).Equal("P3")
}

func TestAll(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner()), row("P2", wireVerner())}},
	}
	db := persons(service, nil)

	seq, err := db.Find().All(context.Background())

	it.Ok(t).
		IfNil(err).
		If(len(seq)).Equal(2)
}

//
// overlay
//

func TestOverlay(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner())}},
	}
	db := persons(service, nil)

	rec, err := db.Find().
		Overlay(map[string]any{"age": 99, "address": "moved"}).
		Next(context.Background())

	it.Ok(t).
		IfNil(err).
		If(rec.(*Person).Age).Equal(99).
		If(rec.(*Person).Address).Equal("moved").
		If(rec.(*Person).Name).Equal("Verner Pleishner")
}

func TestOverlayUnknownAttribute(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner())}},
	}
	db := persons(service, nil)

	rs := db.Find().Overlay(map[string]any{"salary": 1})
	_, err := rs.Next(context.Background())

	it.Ok(t).
		IfNotNil(err).
		IfNil(rs.Error())
}

func TestOverlayTypeMismatch(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner())}},
	}
	db := persons(service, nil)

	_, err := db.Find().
		Overlay(map[string]any{"age": "lots"}).
		Next(context.Background())

	it.Ok(t).IfNotNil(err)
}

//
// operations built on draining
//

func TestCountLocal(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner()), row("P2", wireVerner())}, Token: "t1"},
		{Items: []sdbrec.Item{row("P3", wireVerner())}},
	}
	db := persons(service, nil)

	cnt, err := db.Find().Count(context.Background())

	it.Ok(t).
		IfNil(err).
		If(cnt).Equal(int64(3)).
		If(len(service.countQs)).Equal(0)
}

func TestCountRemote(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner()), row("P2", wireVerner())}},
	}
	service.counts = []*sdbrec.CountPage{
		{Count: 1, Token: "ct"},
		{Count: 1},
	}
	db := persons(service, nil)

	cnt, err := db.Find().Count(context.Background(), sdbrec.NotNull("age"))

	it.Ok(t).
		IfNil(err).
		If(cnt).Equal(int64(2)).
		If(len(service.countQs)).Equal(2).
		If(service.countQs[0].Expr).Equal("select count(*) from `person` where itemName() in ('P1', 'P2') and `age` is not null").
		If(service.countQs[1].Token).Equal("ct")
}

func TestCountEmptyWithExtra(t *testing.T) {
	service := newFakeService()
	db := persons(service, nil)

	cnt, err := db.Find().Count(context.Background(), sdbrec.NotNull("age"))

	it.Ok(t).
		IfNil(err).
		If(cnt).Equal(int64(0)).
		If(len(service.countQs)).Equal(0)
}

func TestSearch(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner()), row("P2", wireVerner())}},
		{Items: []sdbrec.Item{row("P1", wireVerner())}},
	}
	db := persons(service, nil)

	sub, err := db.Find().Search(context.Background(), sdbrec.NotNull("age"))
	it.Ok(t).IfNil(err)

	rec, err := sub.Next(context.Background())

	it.Ok(t).
		IfNil(err).
		If(rec.ItemName()).Equal("P1").
		If(service.queries[1].Expr).
		Equal("select * from `person` where itemName() in ('P1', 'P2') and `age` is not null")
}

func TestSearchEmpty(t *testing.T) {
	service := newFakeService()
	db := persons(service, nil)

	sub, err := db.Find().Search(context.Background(), sdbrec.NotNull("age"))
	it.Ok(t).IfNil(err)

	_, eos := sub.Next(context.Background())

	it.Ok(t).
		IfTrue(errors.Is(eos, sdbrec.EOS{})).
		If(len(service.queries)).Equal(1)
}

func TestUpdate(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner()), row("P2", wireVerner())}},
	}
	db := persons(service, nil)

	err := db.Find().Update(context.Background(), map[string]any{"age": 65})

	it.Ok(t).
		IfNil(err).
		If(len(service.puts)).Equal(2).
		If(service.puts["P1"]["age"]).Equal("09223372036854775873").
		If(service.puts["P1"]["name"]).Equal("Verner Pleishner")
}

func TestDelete(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner()), row("P2", wireVerner())}},
	}
	db := persons(service, nil)

	err := db.Find().Delete(context.Background())

	it.Ok(t).
		IfNil(err).
		If(len(service.removes)).Equal(2).
		If(service.removes[0]).Equal("P1").
		If(service.removes[1]).Equal("P2")
}

//
// pagination
//

func TestPaginate(t *testing.T) {
	service := newFakeService()
	service.counts = []*sdbrec.CountPage{
		{Count: 12, Token: "c1"},
		{Count: 8, Token: "c2"},
	}
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P21", wireVerner())}},
	}
	db := persons(service, nil)

	rs, err := db.Find().Paginate(context.Background(), 10, 3)
	it.Ok(t).IfNil(err)

	rec, err := rs.Next(context.Background())

	it.Ok(t).
		IfNil(err).
		If(rec.ItemName()).Equal("P21").
		If(len(service.countQs)).Equal(2).
		If(service.countQs[0].Expr).Equal("select count(*) from `person` limit 20").
		If(service.countQs[1].Expr).Equal("select count(*) from `person` limit 8").
		If(service.countQs[1].Token).Equal("c1").
		If(service.queries[0].Expr).Equal("select * from `person` limit 10").
		If(service.queries[0].Token).Equal("c2")
}

func TestPaginateBeyondDomain(t *testing.T) {
	service := newFakeService()
	service.counts = []*sdbrec.CountPage{
		{Count: 5},
	}
	db := persons(service, nil)

	rs, err := db.Find().Paginate(context.Background(), 10, 3)
	it.Ok(t).IfNil(err)

	_, eos := rs.Next(context.Background())

	it.Ok(t).
		IfTrue(errors.Is(eos, sdbrec.EOS{})).
		If(len(service.queries)).Equal(0)
}

func TestPaginateFirstPage(t *testing.T) {
	service := newFakeService()
	db := persons(service, nil)

	rs, err := db.Find().Paginate(context.Background(), 10, 1)
	it.Ok(t).IfNil(err)

	rs.Next(context.Background())

	it.Ok(t).
		If(len(service.countQs)).Equal(0).
		If(service.queries[0].Expr).Equal("select * from `person` limit 10")
}

func TestPaginateInvalid(t *testing.T) {
	service := newFakeService()
	db := persons(service, nil)

	_, err := db.Find().Paginate(context.Background(), 0, 1)

	it.Ok(t).IfNotNil(err)
}

func TestPaginateIteratedCursor(t *testing.T) {
	service := newFakeService()
	service.pages = []*sdbrec.Page{
		{Items: []sdbrec.Item{row("P1", wireVerner())}},
	}
	db := persons(service, nil)

	rs := db.Find()
	rs.Next(context.Background())

	_, err := rs.Paginate(context.Background(), 10, 2)

	it.Ok(t).IfNotNil(err)
}
