// Package events holds the wire schemas exchanged between the catalog and
// inventory services, one struct per topic.
package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	TopicBookPublished = "book.published"
	TopicBookBorrowed  = "user.borrowed.book"
	TopicBookReturned  = "user.returned.book"
)

// SchemaVersion is stamped on every payload produced by this module.
// Payloads without a version are accepted as version 1.
const SchemaVersion = 1

var ErrMalformedEvent = errors.New("malformed event")

type Action string

const (
	ActionBorrowed Action = "BORROWED"
	ActionReturned Action = "RETURNED"
)

// BookRef identifies the published book. Only ID is required downstream.
type BookRef struct {
	ID     int64  `json:"id"`
	Title  string `json:"title,omitempty"`
	ISBN   string `json:"isbn,omitempty"`
	Status string `json:"status,omitempty"`
}

type PublishEvent struct {
	Version         int     `json:"schemaVersion,omitempty"`
	Book            BookRef `json:"bookDTO"`
	PublishedCopies int     `json:"publishedCopies"`
	RemainingCopies int     `json:"remainingCopies"`
}

type BorrowReturnEvent struct {
	Version     int    `json:"schemaVersion,omitempty"`
	StoreID     int64  `json:"storeId"`
	InventoryID int64  `json:"inventoryId"`
	BookID      int64  `json:"bookId"`
	UserID      *int64 `json:"userId,omitempty"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason,omitempty"`
	Action      Action `json:"action"`
}

// TopicFor returns the channel a borrow/return action is published on.
func TopicFor(a Action) (string, bool) {
	switch a {
	case ActionBorrowed:
		return TopicBookBorrowed, true
	case ActionReturned:
		return TopicBookReturned, true
	}
	return "", false
}

func DecodePublishEvent(data []byte) (PublishEvent, error) {
	var ev PublishEvent
	if err := strictUnmarshal(data, &ev); err != nil {
		return PublishEvent{}, err
	}
	if err := checkVersion(ev.Version); err != nil {
		return PublishEvent{}, err
	}
	if ev.Book.ID <= 0 {
		return PublishEvent{}, fmt.Errorf("%w: missing book id", ErrMalformedEvent)
	}
	if ev.PublishedCopies < 0 || ev.RemainingCopies < 0 {
		return PublishEvent{}, fmt.Errorf("%w: negative copy count", ErrMalformedEvent)
	}
	return ev, nil
}

// DecodeBorrowReturnEvent parses a payload received on topic. The action in
// the payload must match the channel it arrived on.
func DecodeBorrowReturnEvent(topic string, data []byte) (BorrowReturnEvent, error) {
	var ev BorrowReturnEvent
	if err := strictUnmarshal(data, &ev); err != nil {
		return BorrowReturnEvent{}, err
	}
	if err := checkVersion(ev.Version); err != nil {
		return BorrowReturnEvent{}, err
	}
	want, ok := TopicFor(ev.Action)
	if !ok {
		return BorrowReturnEvent{}, fmt.Errorf("%w: unknown action %q", ErrMalformedEvent, ev.Action)
	}
	if topic != "" && topic != want {
		return BorrowReturnEvent{}, fmt.Errorf("%w: action %s on topic %s", ErrMalformedEvent, ev.Action, topic)
	}
	if ev.StoreID <= 0 || ev.InventoryID <= 0 || ev.BookID <= 0 {
		return BorrowReturnEvent{}, fmt.Errorf("%w: missing identifiers", ErrMalformedEvent)
	}
	if ev.Quantity <= 0 {
		return BorrowReturnEvent{}, fmt.Errorf("%w: quantity must be positive", ErrMalformedEvent)
	}
	return ev, nil
}

// Encode marshals an event and stamps the current schema version.
func Encode(ev any) ([]byte, error) {
	switch e := ev.(type) {
	case PublishEvent:
		e.Version = SchemaVersion
		return json.Marshal(e)
	case *PublishEvent:
		cp := *e
		cp.Version = SchemaVersion
		return json.Marshal(cp)
	case BorrowReturnEvent:
		e.Version = SchemaVersion
		return json.Marshal(e)
	case *BorrowReturnEvent:
		cp := *e
		cp.Version = SchemaVersion
		return json.Marshal(cp)
	}
	return nil, fmt.Errorf("encode: unsupported event type %T", ev)
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrMalformedEvent)
	}
	return nil
}

func checkVersion(v int) error {
	if v == 0 || v == SchemaVersion {
		return nil
	}
	return fmt.Errorf("%w: unsupported schema version %d", ErrMalformedEvent, v)
}
