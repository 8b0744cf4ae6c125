package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/whomadeit/internal/llm"
)

// Result values. Only ResultMan and ResultWoman count toward statistics.
const (
	ResultMan     = "man"
	ResultWoman   = "woman"
	ResultNatural = "natural"
	ResultUnknown = "unknown"
)

// Field defaults applied when the model omits a value.
const (
	DefaultCreator  = "Unknown"
	DefaultCategory = "General"
)

// Guess is the typed classification extracted from model output.
type Guess struct {
	Result      string
	CreatorName string
	Category    string
	Explanation string
}

// Outcome is the result of Parse. Exactly one of the two shapes holds:
// Err == nil means Guess came from well-formed JSON; otherwise Guess is the
// fallback (unknown, Unknown, General, raw text) and Err says why.
type Outcome struct {
	Guess Guess
	Err   error
}

// Parsed reports whether the output was well-formed.
func (o Outcome) Parsed() bool { return o.Err == nil }

// guessOutput mirrors GuessSchema. Pointers distinguish null and absent
// from an explicit empty string.
type guessOutput struct {
	Result      *string `json:"result"`
	CreatorName *string `json:"creator_name"`
	Category    *string `json:"category"`
	Explanation *string `json:"explanation"`
}

// Parse turns raw model text into a Guess. It never fails: malformed
// output produces the fallback guess carrying the raw text.
func Parse(raw string) Outcome {
	g, err := parseJSON(raw)
	if err != nil {
		return Outcome{Guess: fallback(raw), Err: err}
	}
	return Outcome{Guess: g}
}

func parseJSON(raw string) (Guess, error) {
	body := stripFences(strings.TrimSpace(raw))
	if body == "" {
		return Guess{}, errors.New("empty response")
	}

	if err := llm.ValidateResponse(GuessSchema, json.RawMessage(body)); err != nil {
		return Guess{}, err
	}

	var out guessOutput
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return Guess{}, fmt.Errorf("decode guess: %w", err)
	}

	return Guess{
		Result:      normalizeResult(valueOr(out.Result, ResultUnknown)),
		CreatorName: valueOr(out.CreatorName, DefaultCreator),
		Category:    valueOr(out.Category, DefaultCategory),
		Explanation: valueOr(out.Explanation, ""),
	}, nil
}

func fallback(raw string) Guess {
	return Guess{
		Result:      ResultUnknown,
		CreatorName: DefaultCreator,
		Category:    DefaultCategory,
		Explanation: raw,
	}
}

// stripFences removes a surrounding ``` code fence and the optional
// language tag after the opening marker. Unfenced text is returned as is.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Anything between the marker and the first newline is a language tag.
		if tag := strings.TrimSpace(s[:i]); !strings.ContainsAny(tag, "{[\"") {
			s = s[i+1:]
		}
	} else {
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// normalizeResult lower-cases r and maps anything outside the known set
// to ResultUnknown.
func normalizeResult(r string) string {
	r = strings.ToLower(strings.TrimSpace(r))
	switch r {
	case ResultMan, ResultWoman, ResultNatural, ResultUnknown:
		return r
	default:
		return ResultUnknown
	}
}

// Counted reports whether result contributes to gender statistics.
func Counted(result string) bool {
	return result == ResultMan || result == ResultWoman
}

func valueOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
