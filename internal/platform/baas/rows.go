package baas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Filter is a row API column predicate, e.g. category=eq.vegetables.
type Filter struct {
	Column   string
	Operator string
	Value    string
}

func Eq(column, value string) Filter { return Filter{Column: column, Operator: "eq", Value: value} }

func Neq(column, value string) Filter { return Filter{Column: column, Operator: "neq", Value: value} }

// ILike matches case-insensitively; '*' is the wildcard.
func ILike(column, pattern string) Filter {
	return Filter{Column: column, Operator: "ilike", Value: pattern}
}

func In(column string, values []string) Filter {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return Filter{Column: column, Operator: "in", Value: "(" + strings.Join(quoted, ",") + ")"}
}

// Any matches rows satisfying at least one of filters.
func Any(filters ...Filter) Filter {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.Column + "." + f.encode()
	}
	return Filter{Column: "or", Value: "(" + strings.Join(parts, ",") + ")"}
}

func (f Filter) encode() string {
	if f.Operator == "" {
		return f.Value
	}
	return f.Operator + "." + f.Value
}

// Query selects rows from one table.
type Query struct {
	Table   string
	Columns string
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
	// Count requests an exact total in the Content-Range header.
	Count bool
}

func (q Query) values() url.Values {
	v := url.Values{}
	cols := q.Columns
	if cols == "" {
		cols = "*"
	}
	v.Set("select", cols)
	for _, f := range q.Filters {
		v.Add(f.Column, f.encode())
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		v.Set("order", q.OrderBy+"."+dir)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// Select decodes matching rows into out (a pointer to a slice). When
// q.Count is set the total row count is returned, otherwise -1.
func (c *Client) Select(ctx context.Context, accessToken string, q Query, out any) (int, error) {
	header := http.Header{}
	if q.Count {
		header.Set("Prefer", "count=exact")
	}
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   restPrefix + "/" + q.Table,
		query:  q.values(),
		token:  accessToken,
		header: header,
	}, out)
	if err != nil {
		return 0, err
	}
	if !q.Count {
		return -1, nil
	}
	return parseContentRangeTotal(resp.Header.Get("Content-Range"))
}

// Insert creates row and decodes the stored representation into out.
func (c *Client) Insert(ctx context.Context, accessToken, table string, row, out any) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   restPrefix + "/" + table,
		body:   row,
		token:  accessToken,
		header: representation(),
	}, out)
	return err
}

// Upsert inserts row or merges it into the existing row that conflicts on
// the onConflict columns, decoding the stored representation into out.
func (c *Client) Upsert(ctx context.Context, accessToken, table, onConflict string, row, out any) error {
	header := representation()
	header.Add("Prefer", "resolution=merge-duplicates")
	q := url.Values{}
	if onConflict != "" {
		q.Set("on_conflict", onConflict)
	}
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   restPrefix + "/" + table,
		query:  q,
		body:   row,
		token:  accessToken,
		header: header,
	}, out)
	return err
}

// Update patches rows matching filters and decodes the updated rows into out.
func (c *Client) Update(ctx context.Context, accessToken, table string, filters []Filter, patch, out any) error {
	q := url.Values{}
	for _, f := range filters {
		q.Add(f.Column, f.encode())
	}
	_, err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   restPrefix + "/" + table,
		query:  q,
		body:   patch,
		token:  accessToken,
		header: representation(),
	}, out)
	return err
}

// Delete removes rows matching filters.
func (c *Client) Delete(ctx context.Context, accessToken, table string, filters []Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("baas: refusing to delete from %s without filters", table)
	}
	q := url.Values{}
	for _, f := range filters {
		q.Add(f.Column, f.encode())
	}
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   restPrefix + "/" + table,
		query:  q,
		token:  accessToken,
	}, nil)
	return err
}

func representation() http.Header {
	h := http.Header{}
	h.Set("Prefer", "return=representation")
	return h
}

// parseContentRangeTotal reads the total from "0-19/57" or "*/0".
func parseContentRangeTotal(header string) (int, error) {
	_, total, ok := strings.Cut(header, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("baas: content-range %q carries no total", header)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("baas: content-range %q: %w", header, err)
	}
	return n, nil
}
