package summary

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/locality-lens/internal/catalog"
	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/pkg/anthropic"
)

type stubLLM struct {
	text    string
	err     error
	gotUser string
}

func (s *stubLLM) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	if len(req.Messages) > 0 {
		s.gotUser = req.Messages[0].Content
	}
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.text}},
	}, nil
}

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return cat
}

func sampleStats() (model.Statistics, []string) {
	three := 3.0
	halfKM := 0.42
	stats := model.Statistics{
		"school_count":              &three,
		"nearest_metro_distance_km": &halfKM,
		"park_area_km2":             nil, // computed but absent
	}
	return stats, []string{"school_count", "nearest_metro_distance_km", "park_area_km2"}
}

func TestGenerate(t *testing.T) {
	llm := &stubLLM{text: "A solid pick for families."}
	g := NewGenerator(llm, loadCatalog(t), "claude-sonnet-4-5-20250929")
	stats, ids := sampleStats()

	intent := &model.UserIntent{ProfileType: "family", Priorities: []string{"schools"}}
	got, err := g.Generate(context.Background(), "Indiranagar, Bengaluru", intent, stats, ids)
	require.NoError(t, err)
	assert.Equal(t, "A solid pick for families.", got)

	assert.Contains(t, llm.gotUser, "Indiranagar")
	assert.Contains(t, llm.gotUser, "School Count: 3")
	assert.Contains(t, llm.gotUser, "Nearest Metro Distance: 0.42 km")
	assert.Contains(t, llm.gotUser, "Park Area: no data")
	assert.Contains(t, llm.gotUser, "Priorities: schools")
}

func TestGenerateModelFailure(t *testing.T) {
	llm := &stubLLM{err: eris.New("overloaded")}
	g := NewGenerator(llm, loadCatalog(t), "m")
	stats, ids := sampleStats()

	_, err := g.Generate(context.Background(), "anywhere", nil, stats, ids)
	require.Error(t, err)
}

func TestGenerateEmptyReplyIsError(t *testing.T) {
	llm := &stubLLM{text: "   "}
	g := NewGenerator(llm, loadCatalog(t), "m")
	stats, ids := sampleStats()

	_, err := g.Generate(context.Background(), "anywhere", nil, stats, ids)
	require.Error(t, err)
}

func TestTemplate(t *testing.T) {
	cat := loadCatalog(t)
	stats, ids := sampleStats()

	got := Template(cat, "Indiranagar", stats, ids)
	assert.Contains(t, got, "Around Indiranagar")
	assert.Contains(t, got, "school count: 3")
	assert.Contains(t, got, "nearest metro distance: 0.42 km")
	// Null metrics are omitted rather than rendered as zero.
	assert.NotContains(t, got, "park area")

	// Deterministic.
	assert.Equal(t, got, Template(cat, "Indiranagar", stats, ids))
}

func TestTemplateNoData(t *testing.T) {
	cat := loadCatalog(t)

	got := Template(cat, "", model.Statistics{}, []string{"school_count"})
	assert.Contains(t, got, "No metric data")
}
