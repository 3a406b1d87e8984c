package deeplink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Link
	}{
		{"jewgo://events", Link{Target: TargetList}},
		{"jewgo://events/abc-123", Link{Target: TargetDetail, EventID: "abc-123"}},
		{"https://jewgo.app/events", Link{Target: TargetList}},
		{"https://jewgo.app/events/77?category=music", Link{Target: TargetDetail, EventID: "77", Filters: Filters{Category: "music"}}},
		{"jewgo://events?category=shiur&search=daf+yomi&isFree=true", Link{Target: TargetList, Filters: Filters{Category: "shiur", Search: "daf yomi", IsFree: true}}},
		{"https://jewgo.app/events?isFree=false", Link{Target: TargetList}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.raw)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"jewgo://specials/1",
		"https://jewgo.app/",
		"https://jewgo.app/events/1/rsvp",
		"://bad",
	} {
		_, err := Parse(raw)
		require.Error(t, err, raw)
	}
}

func TestExtractEventID(t *testing.T) {
	t.Parallel()

	id, ok := ExtractEventID("https://jewgo.app/events/42?search=x")
	require.True(t, ok)
	require.Equal(t, "42", id)

	id, ok = ExtractEventID("jewgo://events/e-9")
	require.True(t, ok)
	require.Equal(t, "e-9", id)

	_, ok = ExtractEventID("jewgo://events")
	require.False(t, ok)

	require.True(t, IsEventsLink("jewgo://events"))
	require.False(t, IsEventsLink("jewgo://specials"))
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "jewgo://events/42", EventLink("42"))
	require.Equal(t, "https://jewgo.app/events/42", EventUniversalLink("42"))
	require.Equal(t, "jewgo://events", ListLink(Filters{}))
	require.Equal(t, "jewgo://events?category=music&search=kumzits+night&isFree=true",
		ListLink(Filters{Category: "music", Search: "kumzits night", IsFree: true}))
	require.Equal(t, "https://jewgo.app/events?search=a%26b", ListUniversalLink(Filters{Search: "a&b"}))

	// Generated links parse back
	link, err := Parse(ListUniversalLink(Filters{Category: "music", IsFree: true}))
	require.NoError(t, err)
	require.Equal(t, Filters{Category: "music", IsFree: true}, link.Filters)
}
