package repository

import (
	"strings"
	"time"

	"obrafin/pkg/apperror"
	"obrafin/pkg/pagination"
	"obrafin/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchMode says how a query parameter is compared with its column.
type MatchMode int

const (
	MatchExact     MatchMode = iota // equality on the raw value
	MatchID                         // equality on a parsed UUID
	MatchContains                   // case-insensitive substring
	MatchDateRange                  // inclusive range from FromParam/ToParam
)

// FilterField declares one filterable column of an entity.
type FilterField struct {
	Param     string
	Column    string
	Mode      MatchMode
	FromParam string
	ToParam   string
}

// Exact, ID, Contains and DateRange build FilterFields.
func Exact(param, column string) FilterField {
	return FilterField{Param: param, Column: column, Mode: MatchExact}
}

func ID(param, column string) FilterField {
	return FilterField{Param: param, Column: column, Mode: MatchID}
}

func Contains(param, column string) FilterField {
	return FilterField{Param: param, Column: column, Mode: MatchContains}
}

func DateRange(column string) FilterField {
	return FilterField{Column: column, Mode: MatchDateRange, FromParam: "dataInicio", ToParam: "dataFim"}
}

type condition struct {
	sql  string
	args []any
}

// Query is a validated filter plus page and optional project restriction.
type Query struct {
	conds      []condition
	restricted bool
	column     string
	ids        []uuid.UUID
	Page       pagination.Params
}

// NewQuery returns an unfiltered query for the given page.
func NewQuery(page pagination.Params) Query {
	return Query{Page: page}
}

// ParseQuery reads the declared filters from get (usually c.Query).
// Absent or empty parameters are ignored; malformed ids or dates fail validation.
func ParseQuery(fields []FilterField, get func(string) string, page pagination.Params) (Query, error) {
	q := NewQuery(page)
	invalid := map[string]string{}

	for _, f := range fields {
		switch f.Mode {
		case MatchExact:
			if v := strings.TrimSpace(get(f.Param)); v != "" {
				q = q.Where(f.Column+" = ?", v)
			}
		case MatchID:
			if v := strings.TrimSpace(get(f.Param)); v != "" {
				id, err := uuid.Parse(v)
				if err != nil {
					invalid[f.Param] = "must be a valid id"
					continue
				}
				q = q.Where(f.Column+" = ?", id)
			}
		case MatchContains:
			if v := strings.TrimSpace(get(f.Param)); v != "" {
				q = q.Where("LOWER("+f.Column+") LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(v))+"%")
			}
		case MatchDateRange:
			if v := strings.TrimSpace(get(f.FromParam)); v != "" {
				from, err := validator.ParseDate(v)
				if err != nil {
					invalid[f.FromParam] = "must be a valid date (YYYY-MM-DD or RFC 3339)"
				} else {
					q = q.Where(f.Column+" >= ?", from)
				}
			}
			if v := strings.TrimSpace(get(f.ToParam)); v != "" {
				to, err := validator.ParseDate(v)
				switch {
				case err != nil:
					invalid[f.ToParam] = "must be a valid date (YYYY-MM-DD or RFC 3339)"
				case validator.IsBareDate(v):
					// a bare end date covers the whole day
					q = q.Where(f.Column+" < ?", to.Add(24*time.Hour))
				default:
					q = q.Where(f.Column+" <= ?", to)
				}
			}
		}
	}

	if len(invalid) > 0 {
		return Query{}, apperror.Validation(invalid)
	}
	return q, nil
}

// Where adds a raw condition. Column names must come from code, never from input.
func (q Query) Where(sql string, args ...any) Query {
	conds := make([]condition, len(q.conds), len(q.conds)+1)
	copy(conds, q.conds)
	q.conds = append(conds, condition{sql: sql, args: args})
	return q
}

// Restrict limits results to rows whose column is one of ids.
// An empty ids list matches nothing.
func (q Query) Restrict(column string, ids []uuid.UUID) Query {
	q.restricted = true
	q.column = column
	q.ids = ids
	return q
}

// MatchesNothing reports whether the restriction excludes every row.
func (q Query) MatchesNothing() bool {
	return q.restricted && len(q.ids) == 0
}

// Apply adds the query's conditions to db.
func (q Query) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range q.conds {
		db = db.Where(c.sql, c.args...)
	}
	if q.restricted {
		db = db.Where(q.column+" IN ?", q.ids)
	}
	return db
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
