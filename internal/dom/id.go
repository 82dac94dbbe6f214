package dom

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NodeID is a global node identifier. The zero value means "none".
type NodeID string

// Resolve derives the global id of localID inside context.
func Resolve(localID string, context NodeID) NodeID {
	if context == "" {
		return NodeID(localID)
	}
	return NodeID(string(context) + "/" + localID)
}

// LocalID converts a raw local id as found in event arguments (JSON number,
// Go integer or string) to its canonical string form.
func LocalID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", fmt.Errorf("empty local id")
		}
		return id, nil
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case int32:
		return strconv.FormatInt(int64(id), 10), nil
	case uint64:
		return strconv.FormatUint(id, 10), nil
	case float64:
		if id != math.Trunc(id) || math.IsInf(id, 0) {
			return "", fmt.Errorf("local id %v is not an integer", id)
		}
		return strconv.FormatInt(int64(id), 10), nil
	case json.Number:
		if _, err := id.Int64(); err != nil {
			return "", fmt.Errorf("local id %q: %w", id, err)
		}
		return id.String(), nil
	case nil:
		return "", fmt.Errorf("missing local id")
	default:
		return "", fmt.Errorf("unsupported local id type %T", v)
	}
}

// ResolveArg resolves a raw local id argument in context.
func ResolveArg(v any, context NodeID) (NodeID, error) {
	local, err := LocalID(v)
	if err != nil {
		return "", err
	}
	return Resolve(local, context), nil
}

// InContext reports whether id was resolved inside context, directly or
// through nested frames.
func (id NodeID) InContext(context NodeID) bool {
	if context == "" {
		return true
	}
	return strings.HasPrefix(string(id), string(context)+"/")
}
