package query

import (
	"net/url"
	"strings"
)

// Param is one wire parameter of a compiled filter.
type Param struct {
	Key   string
	Value string
}

// Params is the ordered wire representation of a facet selection. Order
// follows the schema declaration order, which makes Encode deterministic.
type Params []Param

func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for _, param := range p {
		values.Add(param.Key, param.Value)
	}
	return values
}

// Encode serializes the parameters as a query string in declaration order.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, param := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(param.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(param.Value))
	}
	return sb.String()
}

func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}
