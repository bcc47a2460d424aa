package migrate

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	stmts := Statements(pq.QuoteIdentifier("_gazetteer"))
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], `CREATE TABLE IF NOT EXISTS "_gazetteer"`)
	assert.Contains(t, stmts[0], "id SERIAL PRIMARY KEY")
	assert.Contains(t, stmts[1], `"idx__gazetteer_name" ON "_gazetteer"(name)`)
}
