package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-04-20")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2020, time.April, 20), d)
	assert.Equal(t, "2020-04-20", d.String())

	_, err = ParseDate("04/20/2020")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		Harvest *Date `json:"harvest"`
	}

	out, err := json.Marshal(payload{Harvest: &Date{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"harvest":"0001-01-01"}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"harvest":"2021-12-31"}`), &in))
	require.NotNil(t, in.Harvest)
	assert.True(t, in.Harvest.Equal(NewDate(2021, time.December, 31)))

	var missing payload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &missing))
	assert.Nil(t, missing.Harvest)

	assert.Error(t, json.Unmarshal([]byte(`{"harvest":"yesterday"}`), &in))
}

func TestDatePgtype(t *testing.T) {
	var d Date
	require.NoError(t, d.ScanDate(pgtype.Date{Time: time.Date(2022, 1, 2, 15, 4, 0, 0, time.UTC), Valid: true}))
	assert.Equal(t, "2022-01-02", d.String())

	v, err := d.DateValue()
	require.NoError(t, err)
	assert.True(t, v.Valid)

	require.NoError(t, d.ScanDate(pgtype.Date{}))
	assert.True(t, d.IsZero())

	assert.Error(t, d.ScanDate(pgtype.Date{Valid: true, InfinityModifier: pgtype.Infinity}))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2019-07-04"))
	assert.Equal(t, "2019-07-04", d.String())
	require.NoError(t, d.Scan(time.Date(2019, 7, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2019-07-05", d.String())
	assert.Error(t, d.Scan(42))
}
