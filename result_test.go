package docfed_test

import (
	"encoding/json"
	"testing"

	"github.com/docfed/docfed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriority_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "low", docfed.PriorityLow.String())
	assert.Equal(t, "critical", docfed.PriorityCritical.String())
	assert.Equal(t, "unknown", docfed.Priority(42).String())
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		t.Parallel()

		p, err := docfed.ParsePriority("high")

		require.NoError(t, err)
		assert.Equal(t, docfed.PriorityHigh, p)
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		_, err := docfed.ParsePriority("urgent")

		require.Error(t, err)
		assert.Equal(t, docfed.EINVALID, docfed.ErrorCode(err))
	})
}

func TestPriority_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(docfed.PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, `"normal"`, string(data))

	var p docfed.Priority
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, docfed.PriorityNormal, p)
}

func TestResult_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		r := &docfed.Result{
			Source:     "https://react.dev/reference/react/hooks",
			ProviderID: "devdocs",
			Confidence: 0.9,
			TTLSeconds: 3600,
		}

		assert.NoError(t, r.Validate())
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		r := &docfed.Result{ProviderID: "devdocs"}

		err := r.Validate()
		require.Error(t, err)
		assert.Equal(t, docfed.EINVALID, docfed.ErrorCode(err))
	})

	t.Run("confidence out of range", func(t *testing.T) {
		t.Parallel()

		r := &docfed.Result{
			Source:     "https://example.com",
			ProviderID: "devdocs",
			Confidence: 1.5,
		}

		assert.Error(t, r.Validate())
	})

	t.Run("negative TTL", func(t *testing.T) {
		t.Parallel()

		r := &docfed.Result{
			Source:     "https://example.com",
			ProviderID: "devdocs",
			TTLSeconds: -1,
		}

		assert.Error(t, r.Validate())
	})
}

func TestResult_Qualifies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ttl      int
		priority docfed.Priority
		want     bool
	}{
		{"normal with TTL", 3600, docfed.PriorityNormal, true},
		{"high with TTL", 3600, docfed.PriorityHigh, true},
		{"low priority", 3600, docfed.PriorityLow, false},
		{"zero TTL", 0, docfed.PriorityCritical, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &docfed.Result{TTLSeconds: tt.ttl, Priority: tt.priority}

			assert.Equal(t, tt.want, r.Qualifies())
		})
	}
}

func TestSearchQuery_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		q := &docfed.SearchQuery{Text: "react hooks", Limit: 5}

		assert.NoError(t, q.Validate())
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()

		q := &docfed.SearchQuery{}

		err := q.Validate()
		require.Error(t, err)
		assert.Equal(t, docfed.EINVALID, docfed.ErrorCode(err))
	})

	t.Run("negative limit", func(t *testing.T) {
		t.Parallel()

		q := &docfed.SearchQuery{Text: "react hooks", Limit: -1}

		assert.Error(t, q.Validate())
	})
}

func TestProviderDescriptor_Supports(t *testing.T) {
	t.Parallel()

	t.Run("agnostic provider supports everything", func(t *testing.T) {
		t.Parallel()

		d := &docfed.ProviderDescriptor{ID: "devdocs"}

		assert.True(t, d.Supports("react"))
		assert.True(t, d.Supports(""))
	})

	t.Run("scoped provider excludes other technologies", func(t *testing.T) {
		t.Parallel()

		d := &docfed.ProviderDescriptor{ID: "reactdocs", Technologies: []string{"react", "react-native"}}

		assert.True(t, d.Supports("react"))
		assert.False(t, d.Supports("vue"))
		assert.True(t, d.Supports("")) // no hint means eligible
	})
}
