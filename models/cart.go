package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// CartSlots is the number of slots every new cart starts with.
const CartSlots = 300

// Cart maps an item index ("0".."299") to the number of units in the cart.
// Keys outside that range are legal and simply extend the map.
type Cart map[string]int

// NewCart returns a cart with every slot in [0, CartSlots) set to zero.
func NewCart() Cart {
	cart := make(Cart, CartSlots)
	for i := 0; i < CartSlots; i++ {
		cart[strconv.Itoa(i)] = 0
	}
	return cart
}

// UnmarshalBSONValue reads carts written by older clients, where a slot may
// hold a double (including NaN) or null instead of an integer. Fractions are
// truncated and anything non-numeric or non-finite reads as zero.
func (c *Cart) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*c = nil
		return nil
	case bsontype.EmbeddedDocument:
	default:
		return fmt.Errorf("cannot decode %s into a cart", t)
	}

	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}
	cart := make(Cart, len(elems))
	for _, e := range elems {
		cart[e.Key()] = slotCount(e.Value())
	}
	*c = cart
	return nil
}

func slotCount(v bson.RawValue) int {
	if n, ok := v.Int32OK(); ok {
		return int(n)
	}
	if n, ok := v.Int64OK(); ok {
		return int(n)
	}
	if f, ok := v.DoubleOK(); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}

var ErrInvalidItemKey = errors.New("invalid item id")

// ItemKey is a cart slot key. Clients send it either as a JSON number
// (5) or a string ("5"); both address the same slot.
type ItemKey string

func (k *ItemKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrInvalidItemKey
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = ItemKey(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return ErrInvalidItemKey
	}
	if i, err := n.Int64(); err == nil {
		*k = ItemKey(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return ErrInvalidItemKey
	}
	*k = ItemKey(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Validate rejects keys that cannot be used as a document field name.
func (k ItemKey) Validate() error {
	s := string(k)
	if s == "" || strings.ContainsAny(s, ".\x00") || strings.HasPrefix(s, "$") {
		return ErrInvalidItemKey
	}
	return nil
}

// CartItemRequest is the body of /addtocart and /removefromcart.
type CartItemRequest struct {
	ItemID *ItemKey `json:"itemId" binding:"required"`
}
