package solver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mobtakir/api/internal/technique"
	"mobtakir/api/internal/util"
)

type Solution struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Emoji    string `json:"emoji"`
	Category string `json:"category"`
}

// ClipboardText is what "copy" puts on the clipboard: title, newline, body.
func (s Solution) ClipboardText() string {
	return s.Title + "\n" + s.Text
}

// Result is a validated solve. TechniqueID always names a catalog entry;
// when the model answered with an unknown id, Repaired is set and
// RawTechniqueID keeps what it said.
type Result struct {
	TechniqueID    technique.ID         `json:"techniqueId"`
	Technique      technique.Descriptor `json:"technique"`
	RawTechniqueID string               `json:"rawTechniqueId,omitempty"`
	Repaired       bool                 `json:"repaired"`
	Analysis       string               `json:"analysis"`
	Solutions      []Solution           `json:"solutions"`
}

type replyWire struct {
	TechniqueID *string         `json:"techniqueId"`
	Analysis    *string         `json:"analysis"`
	Solutions   *[]solutionWire `json:"solutions"`
}

type solutionWire struct {
	Title    *string `json:"title"`
	Text     *string `json:"text"`
	Emoji    *string `json:"emoji"`
	Category *string `json:"category"`
}

var errEmptyReply = errors.New("empty response")

// ParseReply decodes a raw model reply and maps it onto a Result. Any
// missing required field fails the whole reply; the only repair applied is
// substituting the default technique for an unknown id.
func ParseReply(raw string) (Result, error) {
	raw = util.StripCodeFences(raw)
	if raw == "" {
		return Result{}, errEmptyReply
	}

	var w replyWire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Result{}, fmt.Errorf("bad JSON: %w", err)
	}
	switch {
	case w.TechniqueID == nil:
		return Result{}, missingField("techniqueId")
	case w.Analysis == nil:
		return Result{}, missingField("analysis")
	case w.Solutions == nil:
		return Result{}, missingField("solutions")
	}

	sols := make([]Solution, 0, len(*w.Solutions))
	for i, s := range *w.Solutions {
		for _, f := range []struct {
			name string
			v    *string
		}{{"title", s.Title}, {"text", s.Text}, {"emoji", s.Emoji}, {"category", s.Category}} {
			if f.v == nil {
				return Result{}, missingField(fmt.Sprintf("solutions[%d].%s", i, f.name))
			}
		}
		sols = append(sols, Solution{Title: *s.Title, Text: *s.Text, Emoji: *s.Emoji, Category: *s.Category})
	}

	raw = strings.TrimSpace(*w.TechniqueID)
	d, known := technique.Lookup(technique.ID(raw))
	res := Result{
		Analysis:  *w.Analysis,
		Solutions: sols,
	}
	if known {
		res.Technique = d
	} else {
		res.Technique = technique.Default()
		res.RawTechniqueID = raw
		res.Repaired = true
	}
	res.TechniqueID = res.Technique.ID
	return res, nil
}

func missingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}
