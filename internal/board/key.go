package board

import (
	"fmt"
	"strconv"
	"strings"
)

const keySep = ":"

// Key encodes a world coordinate as the sparse board's lookup key, e.g. "-3:7".
func Key(x, y int) string {
	return strconv.Itoa(x) + keySep + strconv.Itoa(y)
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (int, int, error) {
	xs, ys, ok := strings.Cut(key, keySep)
	if !ok {
		return 0, 0, fmt.Errorf("malformed cell key %q", key)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed cell key %q: %w", key, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed cell key %q: %w", key, err)
	}
	return x, y, nil
}
