package redis

import (
	"context"
	"strconv"

	"github.com/lumakr/luma/internal/db"
)

// SuggestAdd inserts (or updates the weight of) a completion entry.
func (s *Store) SuggestAdd(ctx context.Context, dict, input string, weight float64) error {
	cmd := s.b().Arbitrary("FT.SUGADD").
		Args(dict, input, strconv.FormatFloat(weight, 'f', -1, 64)).
		Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSuggestAdd, Err: err}
	}
	return nil
}

// Suggest returns completion entries matching the prefix, best first.
func (s *Store) Suggest(ctx context.Context, dict, prefix string, fuzzy bool, max int) ([]string, error) {
	args := []string{dict, prefix}
	if fuzzy {
		args = append(args, "FUZZY")
	}
	if max > 0 {
		args = append(args, "MAX", strconv.Itoa(max))
	}

	cmd := s.b().Arbitrary("FT.SUGGET").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSuggest, Err: err}
	}

	suggestions := make([]string, 0, len(raw))
	for _, msg := range raw {
		v, err := msg.ToString()
		if err != nil {
			continue
		}
		suggestions = append(suggestions, v)
	}
	return suggestions, nil
}
