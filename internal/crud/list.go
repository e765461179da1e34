package crud

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rukioi/legalflow/internal/tenant"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
)

// ListFilter is the fixed set of filter keys list endpoints recognize.
// Unknown query parameters never reach SQL.
type ListFilter struct {
	Status   string
	Priority string
	Search   string
	Tags     []string
	Page     int
	Limit    int
}

func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	return f
}

func (f ListFilter) Offset() int { return (f.Page - 1) * f.Limit }

// Where renders the conjunctive filter clause. statusCol varies per entity
// (deals filter on stage); searchCols are matched with a case-insensitive
// substring test; tags use jsonb key-overlap so any requested tag matches.
func (f ListFilter) Where(statusCol string, searchCols ...string) (string, []any) {
	conds := []string{"is_active = TRUE"}
	var args []any

	next := func() int { return len(args) + 1 }

	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("%s = $%d", statusCol, next()))
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		conds = append(conds, fmt.Sprintf("priority = $%d", next()))
		args = append(args, f.Priority)
	}
	if f.Search != "" && len(searchCols) > 0 {
		n := next()
		ors := make([]string, len(searchCols))
		for i, col := range searchCols {
			ors[i] = fmt.Sprintf("%s ILIKE $%d", col, n)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		args = append(args, "%"+f.Search+"%")
	}
	if len(f.Tags) > 0 {
		conds = append(conds, fmt.Sprintf("tags ?| $%d", next()))
		args = append(args, f.Tags)
	}

	return strings.Join(conds, " AND "), args
}

// Page describes one page of a list result.
type Page struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func NewPage(page, limit, total int) Page {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return Page{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// List runs the filtered page query and its COUNT companion concurrently;
// they are independent reads against the same schema. Ordering is always
// newest-first by creation time.
func List[T any](ctx context.Context, db *tenant.DB, table string, f ListFilter, statusCol, selectCols string, searchCols []string, scan RowScanner[T]) ([]T, Page, error) {
	f = f.Normalize()
	where, args := f.Where(statusCol, searchCols...)

	listTmpl := fmt.Sprintf(
		"SELECT %s FROM %s.%s WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		selectCols, tenant.SchemaPlaceholder, table, where, len(args)+1, len(args)+2)
	countTmpl := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s.%s WHERE %s", tenant.SchemaPlaceholder, table, where)

	listArgs := append(append([]any{}, args...), f.Limit, f.Offset())

	var (
		items []T
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = Query(gctx, db, listTmpl, listArgs, scan)
		return err
	})
	g.Go(func() error {
		err := db.QueryRow(gctx, countTmpl, args...).Scan(&total)
		return tenant.WrapError(countTmpl, err)
	})
	if err := g.Wait(); err != nil {
		return nil, Page{}, err
	}

	return items, NewPage(f.Page, f.Limit, total), nil
}
