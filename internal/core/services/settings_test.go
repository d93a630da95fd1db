package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/config/file"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

func newTestSettings(t *testing.T) (*SettingsService, *file.ConfigStore) {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return NewSettingsService(store), store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(t)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newTestSettings(t)
	require.NoError(t, store.Set(KeyChunkSize, int64(800)))
	require.NoError(t, store.Set(KeyChunkOverlap, int64(50)))
	require.NoError(t, store.Set(KeyRerank, true))
	require.NoError(t, store.Set(KeyEmbedProvider, "openai"))
	require.NoError(t, store.Set(KeyLLMTemperature, int64(1)))
	require.NoError(t, store.Set(KeyFetchTimeout, "5s"))
	require.NoError(t, store.Set(KeyLLMTimeout, int64(90)))
	require.NoError(t, store.Set(KeySourceURLs, []any{"https://a.example", "https://b.example"}))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, 800, settings.RAG.ChunkSize)
	assert.Equal(t, 50, settings.RAG.ChunkOverlap)
	assert.True(t, settings.RAG.RerankEnabled)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.InDelta(t, 1.0, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, 5*time.Second, settings.Sources.FetchTimeout)
	assert.Equal(t, 90*time.Second, settings.LLM.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, settings.Sources.DefaultURLs)
}

func TestSettingsService_Get_RejectsInvalidStoredValues(t *testing.T) {
	service, store := newTestSettings(t)
	require.NoError(t, store.Set(KeyChunkOverlap, int64(600)))

	_, err := service.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, s *domain.Settings)
	}{
		{
			name:  "int",
			key:   KeyRetrievalK,
			value: "4",
			check: func(t *testing.T, s *domain.Settings) { assert.Equal(t, 4, s.RAG.RetrievalK) },
		},
		{
			name:  "bool",
			key:   KeyRerank,
			value: "true",
			check: func(t *testing.T, s *domain.Settings) { assert.True(t, s.RAG.RerankEnabled) },
		},
		{
			name:  "float",
			key:   KeyFetchRate,
			value: "0.5",
			check: func(t *testing.T, s *domain.Settings) {
				assert.InDelta(t, 0.5, s.Sources.RequestsPerSecond, 1e-9)
			},
		},
		{
			name:  "duration",
			key:   KeyEmbedTimeout,
			value: "1m30s",
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, 90*time.Second, s.Embedding.Timeout)
			},
		},
		{
			name:  "list",
			key:   KeySourceFiles,
			value: "a.txt, b.pdf ,",
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, []string{"a.txt", "b.pdf"}, s.Sources.DefaultFiles)
			},
		},
		{
			name:  "string",
			key:   KeyLLMModel,
			value: "deepseek-reasoner",
			check: func(t *testing.T, s *domain.Settings) { assert.Equal(t, "deepseek-reasoner", s.LLM.Model) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestSettings(t)

			require.NoError(t, service.Set(tt.key, tt.value))

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Set_UnknownKey(t *testing.T) {
	service, _ := newTestSettings(t)

	err := service.Set("rag.nope", "1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set_UnparsableValue(t *testing.T) {
	service, _ := newTestSettings(t)

	err := service.Set(KeyChunkSize, "large")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set_InvalidResultIsRolledBack(t *testing.T) {
	service, store := newTestSettings(t)
	require.NoError(t, service.Set(KeyChunkOverlap, "50"))

	err := service.Set(KeyChunkOverlap, "500")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 50, store.GetInt(KeyChunkOverlap))
}

func TestSettingsService_Set_InvalidWithoutPreviousRestoresDefault(t *testing.T) {
	service, _ := newTestSettings(t)

	err := service.Set(KeyLLMProvider, "gemini")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
}

func TestSettingsService_Entries_MasksSecrets(t *testing.T) {
	service, store := newTestSettings(t)
	require.NoError(t, store.Set(KeyLLMAPIKey, "sk-1234567890abcd"))

	entries, err := service.Entries()

	require.NoError(t, err)
	require.Len(t, entries, len(SettingKeys()))

	byKey := make(map[string]string, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e.Value
	}
	assert.Equal(t, "****abcd", byKey[KeyLLMAPIKey])
	assert.Equal(t, "", byKey[KeyEmbedAPIKey])
	assert.Equal(t, "500", byKey[KeyChunkSize])
	assert.Equal(t, "20s", byKey[KeyFetchTimeout])
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****6789", MaskSecret("sk-0123456789"))
}
