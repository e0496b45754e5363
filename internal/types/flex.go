package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexString is a string field that also accepts JSON numbers and booleans.
// Models regularly emit `"total": 120` where the schema asks for a string.
type FlexString string

// UnmarshalJSON accepts a string, number, boolean or null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*f = FlexString(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
	}
	return nil
}

// String returns the underlying value
func (f FlexString) String() string {
	return string(f)
}
