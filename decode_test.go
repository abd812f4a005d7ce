package conftree_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ostraca/conftree"
)

func TestParseYAML(t *testing.T) {
	data := []byte(`
paramA: &paramA foo:valA
paramB: *paramA
paramC: 42
paramD: 42.5
paramE: true
paramF: null
paramG:
  - one
  - 2
paramH:
  paramHA: valHA
`)

	config, err := conftree.ParseYAML(data)

	if err != nil {
		t.Error(err)
		return
	}

	eConfig := map[string]interface{}{
		"paramA": "foo:valA",
		"paramB": "foo:valA",
		"paramC": int64(42),
		"paramD": 42.5,
		"paramE": true,
		"paramF": nil,
		"paramG": []interface{}{"one", int64(2)},
		"paramH": map[string]interface{}{"paramHA": "valHA"},
	}

	tConfig := config.Interface()

	if !reflect.DeepEqual(tConfig, eConfig) {
		t.Errorf("unexpected configuration returned: %#v", tConfig)
	}

	eKeys := []string{"paramA", "paramB", "paramC", "paramD", "paramE",
		"paramF", "paramG", "paramH"}
	tKeys := config.(*conftree.Mapping).Keys()

	if !reflect.DeepEqual(tKeys, eKeys) {
		t.Errorf("unexpected key order returned: %#v", tKeys)
	}
}

func TestParseYAMLEmpty(t *testing.T) {
	config, err := conftree.ParseYAML([]byte(""))

	if err != nil {
		t.Error(err)
		return
	}

	if config != nil {
		t.Errorf("unexpected configuration returned: %#v", config)
	}
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"paramA": "bar:valA",
		"paramB": 42,
		"paramC": 42.5,
		"paramD": [true, null],
		"paramE": {"paramEA": "valEA"}
	}`)

	config, err := conftree.ParseJSON(data)

	if err != nil {
		t.Error(err)
		return
	}

	eConfig := map[string]interface{}{
		"paramA": "bar:valA",
		"paramB": int64(42),
		"paramC": 42.5,
		"paramD": []interface{}{true, nil},
		"paramE": map[string]interface{}{"paramEA": "valEA"},
	}

	tConfig := config.Interface()

	if !reflect.DeepEqual(tConfig, eConfig) {
		t.Errorf("unexpected configuration returned: %#v", tConfig)
	}

	eKeys := []string{"paramA", "paramB", "paramC", "paramD", "paramE"}
	tKeys := config.(*conftree.Mapping).Keys()

	if !reflect.DeepEqual(tKeys, eKeys) {
		t.Errorf("unexpected key order returned: %#v", tKeys)
	}

	t.Run("empty_input",
		func(t *testing.T) {
			config, err := conftree.ParseJSON(nil)

			if err != nil {
				t.Error(err)
				return
			}

			if config != nil {
				t.Errorf("unexpected configuration returned: %#v", config)
			}
		},
	)

	t.Run("trailing_data",
		func(t *testing.T) {
			_, err := conftree.ParseJSON([]byte(`{"paramA": 1} tail`))

			if err == nil {
				t.Error("no error happened")
			} else if !strings.Contains(err.Error(), "unexpected data") {
				t.Error("other error happened:", err)
			}
		},
	)
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
paramA = "moo:valA"
paramB = 42
paramC = 42.5
paramD = ["one", "two"]

[paramE]
paramEA = "valEA"
paramEB = { host = "localhost", port = 5432 }

[[paramF]]
name = "first"

[[paramF]]
name = "second"
`)

	config, err := conftree.ParseTOML(data)

	if err != nil {
		t.Error(err)
		return
	}

	eConfig := map[string]interface{}{
		"paramA": "moo:valA",
		"paramB": int64(42),
		"paramC": 42.5,
		"paramD": []interface{}{"one", "two"},

		"paramE": map[string]interface{}{
			"paramEA": "valEA",

			"paramEB": map[string]interface{}{
				"host": "localhost",
				"port": int64(5432),
			},
		},

		"paramF": []interface{}{
			map[string]interface{}{"name": "first"},
			map[string]interface{}{"name": "second"},
		},
	}

	tConfig := config.Interface()

	if !reflect.DeepEqual(tConfig, eConfig) {
		t.Errorf("unexpected configuration returned: %#v", tConfig)
	}

	eKeys := []string{"paramA", "paramB", "paramC", "paramD", "paramE",
		"paramF"}
	tKeys := config.(*conftree.Mapping).Keys()

	if !reflect.DeepEqual(tKeys, eKeys) {
		t.Errorf("unexpected key order returned: %#v", tKeys)
	}
}

func TestDecoderSupports(t *testing.T) {
	yamlDec := conftree.NewYAMLDecoder()
	jsonDec := conftree.NewJSONDecoder()
	tomlDec := conftree.NewTOMLDecoder()

	if !yamlDec.Supports("etc/myapp.yml") || !yamlDec.Supports("etc/MYAPP.YAML") {
		t.Error("YAML decoder rejects its own extensions")
	}

	if yamlDec.Supports("etc/myapp.json") {
		t.Error("YAML decoder claims a JSON file")
	}

	if !jsonDec.Supports("etc/myapp.json") || jsonDec.Supports("etc/myapp.toml") {
		t.Error("JSON decoder claims wrong extensions")
	}

	if !tomlDec.Supports("etc/myapp.toml") || tomlDec.Supports("etc/myapp") {
		t.Error("TOML decoder claims wrong extensions")
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.yml")

	err := os.WriteFile(path, []byte("paramA: foo:valA\n"), 0o644)

	if err != nil {
		t.Fatal(err)
	}

	config, err := conftree.NewYAMLDecoder().Decode(path)

	if err != nil {
		t.Error(err)
		return
	}

	eConfig := map[string]interface{}{"paramA": "foo:valA"}
	tConfig := config.Interface()

	if !reflect.DeepEqual(tConfig, eConfig) {
		t.Errorf("unexpected configuration returned: %#v", tConfig)
	}

	t.Run("missing_file",
		func(t *testing.T) {
			_, err := conftree.NewYAMLDecoder().Decode(
				filepath.Join(dir, "absent.yml"))

			var parseErr *conftree.ParseError

			if err == nil {
				t.Error("no error happened")
			} else if !errors.As(err, &parseErr) {
				t.Error("other error happened:", err)
			}
		},
	)

	t.Run("malformed_document",
		func(t *testing.T) {
			path := filepath.Join(dir, "broken.yml")

			err := os.WriteFile(path, []byte("paramA: [unclosed\n"), 0o644)

			if err != nil {
				t.Fatal(err)
			}

			_, err = conftree.NewYAMLDecoder().Decode(path)

			var parseErr *conftree.ParseError

			if err == nil {
				t.Error("no error happened")
			} else if !errors.As(err, &parseErr) {
				t.Error("other error happened:", err)
			} else if parseErr.Path != path {
				t.Errorf("unexpected path returned: %s", parseErr.Path)
			}
		},
	)
}

func TestRegistry(t *testing.T) {
	registry := conftree.NewRegistry(conftree.DefaultDecoders()...)

	if _, err := registry.Resolve("etc/myapp.toml"); err != nil {
		t.Error(err)
	}

	_, err := registry.Resolve("etc/myapp.ini")

	var formatErr *conftree.UnsupportedFormatError

	if err == nil {
		t.Error("no error happened")
	} else if !errors.As(err, &formatErr) {
		t.Error("other error happened:", err)
	} else if !strings.Contains(err.Error(), "unsupported format") {
		t.Error("other error happened:", err)
	}

	if len(registry.Decoders()) != 3 {
		t.Errorf("unexpected number of decoders: %d", len(registry.Decoders()))
	}
}
