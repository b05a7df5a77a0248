package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestModificationActionDecodeVariants(t *testing.T) {
	payload := `[
		{"action_id": 1, "action_type": "NEW_PRODUCT", "product_name": "Widget", "manufacturer_part_number": "W-1", "new_price": "1,200.50", "new_description": "Blue widget"},
		{"action_id": "2", "action_type": "REMOVED_PRODUCT", "old_price": 9.99},
		{"action_id": 3, "action_type": "PRICE_INCREASE", "old_price": 10, "new_price": 12, "created_time": "2024-03-01T10:00:00.123456"},
		{"action_id": 4, "action_type": "DESCRIPTION_CHANGE", "old_description": "old", "new_description": "new"},
		{"action_id": 5, "action_type": "BOGUS"}
	]`
	var actions []ModificationAction
	require.NoError(t, json.Unmarshal([]byte(payload), &actions))
	require.Len(t, actions, 5)

	change, ok := actions[0].Decode()
	require.True(t, ok)
	addition, isAddition := change.(Addition)
	require.True(t, isAddition)
	require.Equal(t, "1", addition.ActionID)
	require.Equal(t, "Widget", addition.Name)
	require.Equal(t, "Blue widget", addition.Description)
	require.NotNil(t, addition.Price)
	require.InDelta(t, 1200.50, *addition.Price, 0.001)

	change, ok = actions[1].Decode()
	require.True(t, ok)
	deletion := change.(Deletion)
	require.Equal(t, "", deletion.Name)
	require.InDelta(t, 9.99, *deletion.Price, 0.001)

	change, ok = actions[2].Decode()
	require.True(t, ok)
	increase := change.(PriceIncrease)
	require.Equal(t, ActionPriceIncrease, increase.Action())
	require.NotNil(t, increase.CreatedTime)
	require.Equal(t, time.March, increase.CreatedTime.Month())

	change, ok = actions[3].Decode()
	require.True(t, ok)
	require.Equal(t, "new", change.(DescriptionChange).NewDescription)

	_, ok = actions[4].Decode()
	require.False(t, ok)
}

func TestPriceBlankStringIsAbsent(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		valid bool
		value float64
	}{
		{name: "number", raw: `12.5`, valid: true, value: 12.5},
		{name: "currency string", raw: `"$1,200.50"`, valid: true, value: 1200.50},
		{name: "zero", raw: `0`, valid: true, value: 0},
		{name: "blank", raw: `""`},
		{name: "whitespace", raw: `"  "`},
		{name: "null", raw: `null`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var action ModificationAction
			require.NoError(t, json.Unmarshal([]byte(`{"action_type": "NEW_PRODUCT", "new_price": `+tc.raw+`}`), &action))
			change, ok := action.Decode()
			require.True(t, ok)
			price := change.(Addition).Price
			if !tc.valid {
				require.Nil(t, price)
				return
			}
			require.NotNil(t, price)
			require.InDelta(t, tc.value, *price, 0.001)
		})
	}
}

func TestPriceSurvivesCacheRoundTrip(t *testing.T) {
	in := ModificationAction{ActionType: ActionPriceIncrease, OldPrice: &Price{}, NewPrice: NewPrice(11)}
	payload, err := json.Marshal(in)
	require.NoError(t, err)

	var out ModificationAction
	require.NoError(t, json.Unmarshal(payload, &out))
	require.Nil(t, out.OldPrice.Float())
	require.InDelta(t, 11, *out.NewPrice.Float(), 0.001)
}

func TestTimestampRoundTripAndNull(t *testing.T) {
	var job AnalysisJob
	require.NoError(t, json.Unmarshal([]byte(`{"job_id": 42, "created_time": "2024-01-02 03:04:05", "updated_time": null}`), &job))
	require.Equal(t, FlexibleID("42"), job.JobID)
	require.Equal(t, 2024, job.CreatedTime.Year())
	require.True(t, job.UpdatedTime.IsZero())

	out, err := json.Marshal(job.UpdatedTime)
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}

func TestTimestampToleratesBackendVariants(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		name     string
		raw      string
		want     time.Time
		unparsed string
	}{
		{name: "numeric offset", raw: `"2024-01-02T03:04:05+0000"`, want: want},
		{name: "numeric offset with fraction", raw: `"2024-01-02T05:04:05.123+0200"`, want: want.Add(123 * time.Millisecond)},
		{name: "epoch seconds", raw: `1704164645`, want: want},
		{name: "epoch millis", raw: `1704164645000`, want: want},
		{name: "garbage string", raw: `"yesterday"`, unparsed: "yesterday"},
		{name: "boolean", raw: `true`, unparsed: "true"},
		{name: "blank", raw: `""`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &ts))
			require.True(t, tc.want.Equal(ts.Time), "got %s", ts.Time)
			require.Equal(t, tc.unparsed, ts.Unparsed)
		})
	}
}

func TestJobListSurvivesUnparseableTimestamp(t *testing.T) {
	var jobs []AnalysisJob
	require.NoError(t, json.Unmarshal([]byte(`[
		{"job_id": 1, "created_time": "not a date"},
		{"job_id": 2, "created_time": "2024-01-02T03:04:05.123+0000"}
	]`), &jobs))
	require.Len(t, jobs, 2)
	require.True(t, jobs[0].CreatedTime.IsZero())
	require.Equal(t, "not a date", jobs[0].CreatedTime.Unparsed)
	require.Equal(t, 2024, jobs[1].CreatedTime.Year())

	out, err := json.Marshal(jobs[0].CreatedTime)
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}

func TestFilterStateClear(t *testing.T) {
	now := time.Now()
	state := FilterState{SearchQuery: "acme", ClientFilter: "Acme", StatusFilter: "pending", DateFrom: &now, CurrentPage: 4}
	state.Clear()
	require.Equal(t, DefaultFilterState(), state)
	require.True(t, state.SameFilters(DefaultFilterState()))
}

func TestUserEffectiveStatus(t *testing.T) {
	active := true
	inactive := false
	require.Equal(t, "active", User{IsActive: &active}.EffectiveStatus())
	require.Equal(t, "inactive", User{IsActive: &inactive}.EffectiveStatus())
	require.Equal(t, "pending", User{}.EffectiveStatus())
	require.Equal(t, "Approved", User{Status: "Approved"}.EffectiveStatus())
}
