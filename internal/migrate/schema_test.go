package migrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	queries []string
	failAt  int
}

func (r *recorder) ExecContext(_ context.Context, q string, _ ...interface{}) (sql.Result, error) {
	r.queries = append(r.queries, q)
	if r.failAt > 0 && len(r.queries) == r.failAt {
		return nil, errors.New("boom")
	}
	return nil, nil
}

func TestEnsureSchemaRunsAll(t *testing.T) {
	r := &recorder{}
	assert.NoError(t, EnsureSchema(context.Background(), r))
	assert.Equal(t, Statements, r.queries)
	assert.Contains(t, r.queries[0], "CREATE TABLE IF NOT EXISTS cities")
}

func TestEnsureSchemaStopsOnError(t *testing.T) {
	r := &recorder{failAt: 2}
	assert.Error(t, EnsureSchema(context.Background(), r))
	assert.Len(t, r.queries, 2)
}
