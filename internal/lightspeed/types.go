package lightspeed

import "encoding/json"

// listEnvelope is one page of a paginated listing. The item array is
// either "data" or an endpoint-specific key.
type listEnvelope struct {
	Data      []json.RawMessage `json:"data"`
	Products  []json.RawMessage `json:"products"`
	Suppliers []json.RawMessage `json:"suppliers"`
	Brands    []json.RawMessage `json:"brands"`
	Links     *pageLinks        `json:"links"`
}

type pageLinks struct {
	Next *string `json:"next"`
}

func (e *listEnvelope) items() []json.RawMessage {
	switch {
	case e.Data != nil:
		return e.Data
	case e.Products != nil:
		return e.Products
	case e.Suppliers != nil:
		return e.Suppliers
	case e.Brands != nil:
		return e.Brands
	}
	return nil
}

// nextLink returns "" when pagination is exhausted
func (e *listEnvelope) nextLink() string {
	if e.Links == nil || e.Links.Next == nil {
		return ""
	}
	return *e.Links.Next
}

// parseCreatedProductID handles both product-creation response shapes:
// data as a one-element string array, or data as an object with an id.
func parseCreatedProductID(body []byte) (string, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", err
	}
	var ids []string
	if err := json.Unmarshal(env.Data, &ids); err == nil && len(ids) == 1 {
		return ids[0], nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &obj); err == nil {
		return obj.ID, nil
	}
	return "", nil
}
