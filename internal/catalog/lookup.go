package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
)

// GroupRef is a lookup table value: either an index into the root
// dataset's groups or a group id.
type GroupRef struct {
	Index int
	ID    string
	ByID  bool
}

// UnmarshalJSON accepts a JSON number or string.
func (r *GroupRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "group id")
		}
		*r = GroupRef{ID: s, ByID: true}
		return nil
	}
	i, err := strconv.Atoi(string(data))
	if err != nil {
		return errors.Newf("group reference must be an integer or string, got %s", data)
	}
	*r = GroupRef{Index: i}
	return nil
}

// Lookup maps external entity ids to the group that owns them.
type Lookup map[string]GroupRef

// LoadLookup fetches and decodes the lookup table.
func LoadLookup(ctx context.Context, src Source, name string) (Lookup, error) {
	data, err := src.Fetch(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch lookup %s", name)
	}
	var l Lookup
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrapf(err, "decode lookup %s", name)
	}
	return l, nil
}

// Resolve returns the group id owning entityID. Index references are
// resolved against root, the top-level dataset.
func (l Lookup) Resolve(entityID string, root *Dataset) (string, bool) {
	ref, ok := l[entityID]
	if !ok {
		return "", false
	}
	if ref.ByID {
		return ref.ID, ref.ID != ""
	}
	if root == nil || ref.Index < 0 || ref.Index >= len(root.Data) {
		return "", false
	}
	return root.Data[ref.Index].ID, true
}
