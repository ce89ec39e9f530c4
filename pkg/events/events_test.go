package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBorrowReturnEvent(t *testing.T) {
	payload := `{"storeId":1,"inventoryId":7,"bookId":42,"userId":9,"quantity":5,"reason":"loan","action":"BORROWED"}`

	ev, err := DecodeBorrowReturnEvent(TopicBookBorrowed, []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(7), ev.InventoryID)
	assert.Equal(t, ActionBorrowed, ev.Action)
	require.NotNil(t, ev.UserID)
	assert.Equal(t, int64(9), *ev.UserID)
}

func TestDecodeBorrowReturnEventRejects(t *testing.T) {
	cases := map[string]struct {
		topic   string
		payload string
	}{
		"unknown action":   {TopicBookBorrowed, `{"storeId":1,"inventoryId":1,"bookId":1,"quantity":1,"action":"LOST"}`},
		"topic mismatch":   {TopicBookReturned, `{"storeId":1,"inventoryId":1,"bookId":1,"quantity":1,"action":"BORROWED"}`},
		"zero quantity":    {TopicBookBorrowed, `{"storeId":1,"inventoryId":1,"bookId":1,"quantity":0,"action":"BORROWED"}`},
		"negative qty":     {TopicBookBorrowed, `{"storeId":1,"inventoryId":1,"bookId":1,"quantity":-3,"action":"BORROWED"}`},
		"missing store":    {TopicBookBorrowed, `{"inventoryId":1,"bookId":1,"quantity":1,"action":"BORROWED"}`},
		"unknown field":    {TopicBookBorrowed, `{"storeId":1,"inventoryId":1,"bookId":1,"quantity":1,"action":"BORROWED","extra":true}`},
		"future version":   {TopicBookBorrowed, `{"schemaVersion":2,"storeId":1,"inventoryId":1,"bookId":1,"quantity":1,"action":"BORROWED"}`},
		"not json":         {TopicBookBorrowed, `borrow please`},
		"quantity as text": {TopicBookBorrowed, `{"storeId":1,"inventoryId":1,"bookId":1,"quantity":"2","action":"BORROWED"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeBorrowReturnEvent(tc.topic, []byte(tc.payload))
			require.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}

func TestDecodePublishEvent(t *testing.T) {
	ev, err := DecodePublishEvent([]byte(`{"bookDTO":{"id":3,"title":"Dune"},"publishedCopies":40,"remainingCopies":60}`))
	require.NoError(t, err)
	assert.Equal(t, int64(3), ev.Book.ID)
	assert.Equal(t, 60, ev.RemainingCopies)

	_, err = DecodePublishEvent([]byte(`{"bookDTO":{},"publishedCopies":1,"remainingCopies":0}`))
	require.ErrorIs(t, err, ErrMalformedEvent)
}

func TestEncodeStampsVersion(t *testing.T) {
	data, err := Encode(PublishEvent{Book: BookRef{ID: 1}, PublishedCopies: 2})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"schemaVersion":1`)

	ev, err := DecodePublishEvent(data)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, ev.Version)

	_, err = Encode(struct{}{})
	require.Error(t, err)
}
