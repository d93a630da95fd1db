package layered

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/config/file"
)

func newStore(t *testing.T, keys ...string) (*Store, *file.ConfigStore) {
	t.Helper()
	fs, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	s, err := New(fs, keys)
	require.NoError(t, err)
	return s, fs
}

func TestStore_ReadsFileValues(t *testing.T) {
	s, fs := newStore(t)
	require.NoError(t, fs.Set("rag.chunk_size", 800))
	require.NoError(t, s.Load())

	assert.Equal(t, 800, s.GetInt("rag.chunk_size"))
	_, ok := s.Get("rag.chunk_overlap")
	assert.False(t, ok)
}

func TestStore_EnvOverridesFile(t *testing.T) {
	t.Setenv("GENIE_RAG_CHUNK_SIZE", "300")
	s, fs := newStore(t, "rag.chunk_size")
	require.NoError(t, fs.Set("rag.chunk_size", 800))
	require.NoError(t, s.Load())

	assert.Equal(t, 300, s.GetInt("rag.chunk_size"))
	assert.Equal(t, "300", s.All()["rag.chunk_size"])
}

func TestStore_ProviderKeyAliases(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	s, _ := newStore(t)

	assert.Equal(t, "sk-deepseek", s.GetString("llm.api_key"))
	assert.Equal(t, "sk-openai", s.GetString("embedding.api_key"))
}

func TestStore_PrefixedKeyWinsOverAlias(t *testing.T) {
	t.Setenv("GENIE_LLM_API_KEY", "sk-genie")
	t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")
	s, _ := newStore(t)

	assert.Equal(t, "sk-genie", s.GetString("llm.api_key"))
}

func TestStore_FlagOverridesEnv(t *testing.T) {
	t.Setenv("GENIE_RAG_RETRIEVAL_K", "4")
	s, _ := newStore(t, "rag.retrieval_k")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("k", 10, "")
	require.NoError(t, s.BindFlag("rag.retrieval_k", flags.Lookup("k")))
	assert.Equal(t, 4, s.GetInt("rag.retrieval_k"), "unset flag does not override")

	require.NoError(t, flags.Parse([]string{"--k", "7"}))
	assert.Equal(t, 7, s.GetInt("rag.retrieval_k"))
}

func TestStore_BindMissingFlag(t *testing.T) {
	s, _ := newStore(t)
	assert.Error(t, s.BindFlag("rag.retrieval_k", nil))
}

func TestStore_SetPersistsThroughFile(t *testing.T) {
	s, fs := newStore(t)

	require.NoError(t, s.Set("llm.model", "deepseek-reasoner"))

	assert.Equal(t, "deepseek-reasoner", fs.GetString("llm.model"))
	assert.Equal(t, "deepseek-reasoner", s.GetString("llm.model"))
	assert.Equal(t, fs.Path(), s.Path())
}

func TestStore_StringSliceFromEnv(t *testing.T) {
	t.Setenv("GENIE_SOURCES_URLS", "https://a.example, https://b.example")
	s, _ := newStore(t, "sources.urls")

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, s.GetStringSlice("sources.urls"))
	assert.Nil(t, s.GetStringSlice("sources.files"))
}

func TestStore_StringSliceFromFile(t *testing.T) {
	s, fs := newStore(t)
	require.NoError(t, fs.Set("sources.files", []string{"a.txt", "b.pdf"}))
	require.NoError(t, s.Load())

	assert.Equal(t, []string{"a.txt", "b.pdf"}, s.GetStringSlice("sources.files"))
}
