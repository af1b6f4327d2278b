package postgres

import (
	"strconv"
	"strings"

	"task-manager/internal/entities"
)

// conditions accumulates WHERE clauses with positional arguments.
type conditions struct {
	clauses []string
	args    []any
}

// add appends a clause. Each "?" in clause is replaced with the next placeholder.
func (c *conditions) add(clause string, args ...any) {
	for _, arg := range args {
		c.args = append(c.args, arg)
		clause = strings.Replace(clause, "?", "$"+strconv.Itoa(len(c.args)), 1)
	}
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// paginate appends LIMIT/OFFSET placeholders and returns the clause with its args.
func (c *conditions) paginate(page entities.Page) (string, []any) {
	args := append(append([]any{}, c.args...), page.Limit, page.Offset)
	n := len(args)
	return " LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n), args
}
