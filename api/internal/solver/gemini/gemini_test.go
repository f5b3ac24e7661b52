package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobtakir/api/internal/prompt"
)

func TestGenerateWithoutKey(t *testing.T) {
	_, err := New(" ", "gemini-2.5-pro").Generate(context.Background(), prompt.Prompt{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestFirstText(t *testing.T) {
	assert.Empty(t, firstText(nil))
	assert.Empty(t, firstText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":1}`)}}},
	}}
	assert.Equal(t, `{"a":1}`, firstText(resp))
}

func TestReplySchemaRequiresContractFields(t *testing.T) {
	s := replySchema()
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"techniqueId", "analysis", "solutions"}, s.Required)
	items := s.Properties["solutions"].Items
	require.NotNil(t, items)
	assert.ElementsMatch(t, []string{"title", "text", "emoji", "category"}, items.Required)
}

func TestWithModelCopies(t *testing.T) {
	e := New("k", "a")
	other := e.WithModel("b")
	assert.Equal(t, "a", e.GetModel())
	assert.Equal(t, "b", other.GetModel())
	assert.Equal(t, "gemini", other.Name())
}
