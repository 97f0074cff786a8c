package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Content is the editor state of a post: an opaque JSON document. It is
// stored in Mongo as the equivalent BSON value (normally an embedded
// document) and returned to clients as JSON.
type Content []byte

func (c Content) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return c, nil
}

// UnmarshalJSON keeps the raw document. A JSON null leaves c untouched so an
// update can tell "absent" from "set".
func (c *Content) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	*c = append((*c)[:0], b...)
	return nil
}

// contentField wraps a bare value so any JSON value, not only objects, can
// pass through the extended JSON codec.
const contentField = "v"

func (c Content) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if len(c) == 0 {
		return bson.TypeNull, nil, nil
	}
	wrapped := make([]byte, 0, len(c)+8)
	wrapped = append(wrapped, `{"`+contentField+`":`...)
	wrapped = append(wrapped, c...)
	wrapped = append(wrapped, '}')

	var doc bson.Raw
	if err := bson.UnmarshalExtJSON(wrapped, false, &doc); err != nil {
		return 0, nil, fmt.Errorf("content: %w", err)
	}
	v, err := doc.LookupErr(contentField)
	if err != nil {
		return 0, nil, fmt.Errorf("content: %w", err)
	}
	return v.Type, v.Value, nil
}

func (c *Content) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull || t == bson.TypeUndefined {
		*c = nil
		return nil
	}
	ext, err := bson.MarshalExtJSON(bson.D{{Key: contentField, Value: bson.RawValue{Type: t, Value: data}}}, false, false)
	if err != nil {
		return fmt.Errorf("content: %w", err)
	}
	var wrapper struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(ext, &wrapper); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	*c = Content(wrapper.V)
	return nil
}
