package entitystore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/require"
)

func TestCodecFor(t *testing.T) {
	testCases := []struct {
		name    string
		want    Codec
		wantErr bool
	}{
		{name: "", want: JSON},
		{name: "json", want: JSON},
		{name: " JSON ", want: JSON},
		{name: "yaml", want: YAML},
		{name: "yml", want: YAML},
		{name: "toml", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			codec, err := CodecFor(tc.name)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, codec)
		})
	}
}

func TestJSONCodecWritesIndentedSortedOutput(t *testing.T) {
	data, err := JSON.Marshal(map[string]*customData{
		"b": {CustomData: "two"},
		"a": {CustomData: "one"},
	})
	require.NoError(t, err)

	require.JSONEq(t, `{"a": {"customData": "one"}, "b": {"customData": "two"}}`, string(data))
	require.Contains(t, string(data), "\n  \"a\": {\n    \"customData\"")
	require.Less(t, strings.Index(string(data), `"a"`), strings.Index(string(data), `"b"`))
}

func TestJSONStoreWithNumericKeysIsIndented(t *testing.T) {
	path := writeDataFile(t, "{}")

	store, err := Open[int64](path, newCustomData)
	require.NoError(t, err)

	store.Get(1).Counter = 3
	store.Get(2)
	require.NoError(t, store.Persist())

	want := `{
  "1": {
    "customData": "This is custom data!",
    "counter": 3
  },
  "2": {
    "customData": "This is custom data!"
  }
}`

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want, string(raw))
}

func TestJSONCategoryStoreWithNumericKeysIsIndented(t *testing.T) {
	path := writeDataFile(t, `{"guild": {}}`)

	store, err := OpenCategories[int64](path, newEntityData)
	require.NoError(t, err)

	_, err = store.Get("guild", 123)
	require.NoError(t, err)
	require.NoError(t, store.Persist())

	want := `{
  "guild": {
    "123": {
      "onlyEphemeral": true
    }
  }
}`

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want, string(raw))
}

func TestYAMLStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("42:\n  customData: foo\n"), 0o644))

	store, err := Open[int64](path, newCustomData, WithCodec(YAML))
	require.NoError(t, err)
	require.Equal(t, "foo", store.Get(42).CustomData)

	store.Get(42).CustomData = "bar"
	store.Get(7).Counter = 2
	require.NoError(t, store.Persist())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &decoded))
	require.Equal(t, map[string]map[string]any{
		"7":  {"counter": float64(2), "customData": "This is custom data!"},
		"42": {"customData": "bar"},
	}, decoded)

	reopened, err := Open[int64](path, newCustomData, WithCodec(YAML))
	require.NoError(t, err)
	require.Equal(t, "bar", reopened.Get(42).CustomData)
	require.Equal(t, 2, reopened.Get(7).Counter)
}

func TestYAMLMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- 1\n- 2\n"), 0o644))

	_, err := Open[int64](path, newCustomData, WithCodec(YAML))
	require.ErrorIs(t, err, ErrMalformedData)
}

func TestEnsureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")

	created, err := EnsureFile(path, nil)
	require.NoError(t, err)
	require.True(t, created)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, "{}", string(raw))

	store, err := Open[int64](path, newCustomData)
	require.NoError(t, err)
	store.Get(1)
	require.NoError(t, store.Persist())

	created, err = EnsureFile(path, nil)
	require.NoError(t, err)
	require.False(t, created)

	reopened, err := Open[int64](path, newCustomData)
	require.NoError(t, err)
	require.True(t, reopened.Has(1))
}

func TestEnsureFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")

	created, err := EnsureFile(path, YAML)
	require.NoError(t, err)
	require.True(t, created)

	store, err := OpenCategories[int64](path, newEntityData, WithCodec(YAML), WithCategories("guild"))
	require.NoError(t, err)
	require.Equal(t, []string{"guild"}, store.Categories())
}
