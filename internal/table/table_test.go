package table

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Table {
	t.Helper()
	tb := New("id", "name", "score")
	require.NoError(t, tb.AppendRow(int64(1), "alpha", 1.5))
	require.NoError(t, tb.AppendRow(int64(2), "beta", nil))
	require.NoError(t, tb.AppendRow(int64(3), "gamma, delta", 2.0))
	return tb
}

func TestShapeAndLookup(t *testing.T) {
	tb := sample(t)
	assert.Equal(t, 3, tb.NumRows())
	assert.Equal(t, 3, tb.NumCols())
	assert.Equal(t, []string{"id", "name", "score"}, tb.Names())

	_, ok := tb.Column("Name")
	assert.False(t, ok, "exact lookup is case-sensitive")
	c, ok := tb.ColumnFold("NAME")
	require.True(t, ok)
	assert.Equal(t, "name", c.Name)

	assert.True(t, tb.HasColumns("id", "score"))
	assert.False(t, tb.HasColumns("id", "missing"))
	assert.Equal(t, KindFloat, tb.Columns[2].Kind())
}

func TestAppendRowArity(t *testing.T) {
	tb := New("a", "b")
	assert.Error(t, tb.AppendRow(1))
	require.NoError(t, tb.AddColumn("c", nil))
	require.NoError(t, tb.AppendRow(1, 2, 3))
	assert.Error(t, tb.AddColumn("d", nil))
}

func TestHeadCopies(t *testing.T) {
	tb := sample(t)
	h := tb.Head(2)
	require.Equal(t, 2, h.NumRows())
	h.Columns[1].Values[0] = "changed"
	assert.Equal(t, "alpha", tb.Columns[1].Values[0])

	assert.Equal(t, 3, tb.Head(20).NumRows())
	assert.Equal(t, 0, tb.Head(-1).NumRows())
	assert.Equal(t, 0, New().Head(5).NumRows())
}

func TestCSV(t *testing.T) {
	tb := sample(t)
	got := tb.CSV()
	want := "id,name,score\n1,alpha,1.5\n2,beta,\n3,\"gamma, delta\",2.0\n"
	assert.Equal(t, want, got)
}

func TestMarkdown(t *testing.T) {
	md := sample(t).Markdown()
	assert.True(t, strings.HasPrefix(md, "shape: (3, 3)\n"))
	assert.Contains(t, md, "| id | name | score |")
	assert.Contains(t, md, "| 1 | alpha | 1.50 |")
}

func TestValueHelpers(t *testing.T) {
	f, ok := ToFloat("2.5")
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
	_, ok = ToFloat("abc")
	assert.False(t, ok)

	n, ok := ToInt(1.0)
	assert.True(t, ok)
	assert.Equal(t, int64(1), n)
	_, ok = ToInt(1.5)
	assert.False(t, ok)
	_, ok = ToInt(math.Inf(1))
	assert.False(t, ok)

	assert.Equal(t, "0.33", FormatCell(1.0/3.0))
	assert.Equal(t, "7", FormatCell(int64(7)))
	assert.Equal(t, "2024-03-01", FormatValue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, KindNull, (&Column{Values: []any{nil, nil}}).Kind())
}
