// Package httpapi implements the read-only HTTP list surface of spec
// §6.2: one GET endpoint per entity, translating tolerant snake_case or
// camelCase query parameters into the entity's typed QueryParams and
// sqlstore.PaginationParams.
//
// Grounded on the teacher's internal/router/controllers/system.go handler
// shape (mux vars/query → typed params → service call → JSON envelope),
// generalized from path variables to query-string filters since this
// surface is filter-driven rather than resource-id-driven.
package httpapi

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore/querybuilder"
)

// get reads name from v, falling back to its camelCase form so a deployment
// can send either convention (spec §6.2 "tolerant parsing").
func get(v url.Values, name string) string {
	if s := v.Get(name); s != "" {
		return s
	}
	return v.Get(toCamel(name))
}

func toCamel(snake string) string {
	parts := strings.Split(snake, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func stringParam(v url.Values, name string) *string {
	s := get(v, name)
	if s == "" {
		return nil
	}
	return &s
}

func int64Param(v url.Values, name string) (*int64, error) {
	s := get(v, name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMalformedSubject, err, "parsing "+name)
	}
	return &n, nil
}

func int32Param(v url.Values, name string) (*int32, error) {
	s := get(v, name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMalformedSubject, err, "parsing "+name)
	}
	v32 := int32(n)
	return &v32, nil
}

func boundedIntParam(v url.Values, name string, min, max int) (*int, error) {
	s := get(v, name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMalformedSubject, err, "parsing "+name)
	}
	if n < min || n > max {
		return nil, apperrors.New(apperrors.KindMalformedSubject, name+" out of range")
	}
	return &n, nil
}

func timeParam(v url.Values, name string) (*time.Time, error) {
	s := get(v, name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMalformedSubject, err, "parsing "+name)
	}
	return &t, nil
}

// timeRangeParam accepts "<from>,<to>" as two RFC3339 timestamps, the
// half-open bucket spec §4.D's time_range filter describes.
func timeRangeParam(v url.Values, name string) (*querybuilder.TimeRange, error) {
	s := get(v, name)
	if s == "" {
		return nil, nil
	}
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return nil, apperrors.New(apperrors.KindMalformedSubject, name+` must be "from,to" RFC3339 timestamps`)
	}
	from, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMalformedSubject, err, "parsing "+name+" from")
	}
	to, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMalformedSubject, err, "parsing "+name+" to")
	}
	return &querybuilder.TimeRange{From: from, To: to}, nil
}

func cursorParam(v url.Values, name string) (*domain.Cursor, error) {
	s := get(v, name)
	if s == "" {
		return nil, nil
	}
	c, err := domain.ParseCursor(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func orderByParam(v url.Values) (sqlstore.OrderBy, error) {
	switch strings.ToLower(get(v, "order_by")) {
	case "", "asc":
		return sqlstore.Asc, nil
	case "desc":
		return sqlstore.Desc, nil
	default:
		return sqlstore.Asc, apperrors.New(apperrors.KindMalformedSubject, "order_by must be asc or desc")
	}
}

// paginationParams parses the pagination controls shared by every list
// endpoint (spec §6.2): after/before, first/last (1..100), limit/offset
// (1..1000 / 0..), order_by.
func paginationParams(v url.Values) (sqlstore.PaginationParams, error) {
	after, err := cursorParam(v, "after")
	if err != nil {
		return sqlstore.PaginationParams{}, err
	}
	before, err := cursorParam(v, "before")
	if err != nil {
		return sqlstore.PaginationParams{}, err
	}
	first, err := boundedIntParam(v, "first", 1, 100)
	if err != nil {
		return sqlstore.PaginationParams{}, err
	}
	last, err := boundedIntParam(v, "last", 1, 100)
	if err != nil {
		return sqlstore.PaginationParams{}, err
	}
	limit, err := boundedIntParam(v, "limit", 1, 1000)
	if err != nil {
		return sqlstore.PaginationParams{}, err
	}
	offset, err := boundedIntParam(v, "offset", 0, 1<<30)
	if err != nil {
		return sqlstore.PaginationParams{}, err
	}
	orderBy, err := orderByParam(v)
	if err != nil {
		return sqlstore.PaginationParams{}, err
	}
	return sqlstore.PaginationParams{
		After: after, Before: before, First: first, Last: last,
		Limit: limit, Offset: offset, OrderBy: orderBy,
	}, nil
}

func namespaceParam(v url.Values) string {
	return get(v, "namespace")
}
