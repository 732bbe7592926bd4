package redis

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/luxewear/storefront/internal/domain/cart"
)

// encodeItems serializes line items as a compact JSON array. Prices travel as
// strings to keep decimal precision exact.
func encodeItems(items []cart.LineItem) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, item := range items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(item.ProductID)
		e.FieldStart("name")
		e.Str(item.Name)
		e.FieldStart("unitPrice")
		e.Str(item.UnitPrice.String())
		e.FieldStart("imageUrl")
		e.Str(item.ImageURL)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.FieldStart("size")
		e.Str(item.Size)
		e.FieldStart("color")
		e.Str(item.Color)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// decodeItems parses the snapshot format produced by encodeItems.
func decodeItems(data []byte) ([]cart.LineItem, error) {
	d := jx.DecodeBytes(data)

	var items []cart.LineItem
	if err := d.Arr(func(d *jx.Decoder) error {
		var item cart.LineItem
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "productId":
				item.ProductID, err = d.Str()
			case "name":
				item.Name, err = d.Str()
			case "unitPrice":
				var raw string
				if raw, err = d.Str(); err == nil {
					item.UnitPrice, err = decimal.NewFromString(raw)
				}
			case "imageUrl":
				item.ImageURL, err = d.Str()
			case "quantity":
				item.Quantity, err = d.Int()
			case "size":
				item.Size, err = d.Str()
			case "color":
				item.Color, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, item)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "parse snapshot array")
	}

	return items, nil
}
