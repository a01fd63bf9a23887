package fields

import (
	"fmt"
	"strconv"
)

// Runtime is a title runtime in minutes.
type Runtime int32

func (m Runtime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(fmt.Sprintf("%d mins", m))), nil
}

// UnmarshalJSON accepts both the plain number stored by the database and the "N mins" form.
func (m *Runtime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	var minutes int32
	if _, err := fmt.Sscanf(s, "%d", &minutes); err != nil {
		return fmt.Errorf("invalid runtime %q: %w", string(data), err)
	}
	*m = Runtime(minutes)
	return nil
}
