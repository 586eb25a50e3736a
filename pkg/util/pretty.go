package util

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PrettyJSON marshals a value and returns its indented representation,
// colorized when requested (terminal output)
func PrettyJSON(val interface{}, colorize bool) ([]byte, error) {
	buf, err := json.Marshal(val)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal value")
	}

	buf = pretty.Pretty(buf)

	if colorize {
		buf = pretty.Color(buf, nil)
	}

	return buf, nil
}
