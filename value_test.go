package conftree_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ostraca/conftree"
)

func TestMappingOrder(t *testing.T) {
	m := conftree.NewMapping()
	m.Set("foo", conftree.Scalar{Val: "valA"})
	m.Set("bar", conftree.Scalar{Val: "valB"})
	m.Set("zoo", conftree.Scalar{Val: "valC"})
	m.Set("bar", conftree.Scalar{Val: "valD"})

	eKeys := []string{"foo", "bar", "zoo"}
	tKeys := m.Keys()

	if !reflect.DeepEqual(tKeys, eKeys) {
		t.Errorf("unexpected key order returned: %#v", tKeys)
	}

	if m.Len() != 3 {
		t.Errorf("unexpected length returned: %d", m.Len())
	}

	value, ok := m.Get("bar")

	if !ok {
		t.Error("key not found")
		return
	}

	if value.(conftree.Scalar).Val != "valD" {
		t.Errorf("unexpected value returned: %#v", value)
	}

	m.Delete("bar")

	eKeys = []string{"foo", "zoo"}
	tKeys = m.Keys()

	if !reflect.DeepEqual(tKeys, eKeys) {
		t.Errorf("unexpected key order returned: %#v", tKeys)
	}

	if _, ok := m.Get("bar"); ok {
		t.Error("deleted key still present")
	}
}

func TestClone(t *testing.T) {
	dirs := conftree.NewMapping()
	dirs.Set("rootDir", conftree.Scalar{Val: "/myapp"})

	config := conftree.NewMapping()
	config.Set("dirs", dirs)
	config.Set("mediaFormats", conftree.NewSequence(
		conftree.Scalar{Val: "images"},
		conftree.Scalar{Val: "audio"},
	))

	clone := conftree.Clone(config)

	if !conftree.Equal(clone, config) {
		t.Errorf("unexpected clone returned: %#v", clone.Interface())
		return
	}

	cloneDirs, _ := clone.(*conftree.Mapping).Get("dirs")
	cloneDirs.(*conftree.Mapping).Set("rootDir", conftree.Scalar{Val: "/other"})

	origDir, _ := dirs.Get("rootDir")

	if origDir.(conftree.Scalar).Val != "/myapp" {
		t.Errorf("clone shares nodes with the original: %#v", origDir)
	}
}

func TestEqual(t *testing.T) {
	a := conftree.NewMapping()
	a.Set("foo", conftree.Scalar{Val: int64(1)})
	a.Set("bar", conftree.Scalar{Val: int64(2)})

	b := conftree.NewMapping()
	b.Set("bar", conftree.Scalar{Val: int64(2)})
	b.Set("foo", conftree.Scalar{Val: int64(1)})

	if conftree.Equal(a, b) {
		t.Error("mappings with different key order compare equal")
	}

	c := conftree.NewMapping()
	c.Set("foo", conftree.Scalar{Val: int64(1)})
	c.Set("bar", conftree.Scalar{Val: int64(2)})

	if !conftree.Equal(a, c) {
		t.Error("identical mappings compare unequal")
	}

	if !conftree.Equal(nil, nil) {
		t.Error("nil values compare unequal")
	}

	if conftree.Equal(conftree.Scalar{Val: "1"}, conftree.Scalar{Val: int64(1)}) {
		t.Error("scalars of different types compare equal")
	}

	if conftree.Equal(
		conftree.NewSequence(conftree.Scalar{Val: "a"}),
		conftree.NewSequence(conftree.Scalar{Val: "a"}, conftree.Scalar{Val: "b"}),
	) {
		t.Error("sequences of different lengths compare equal")
	}
}

func TestInterface(t *testing.T) {
	db := conftree.NewMapping()
	db.Set("host", conftree.Scalar{Val: "stat.mydb.com"})
	db.Set("port", conftree.Scalar{Val: int64(5432)})

	config := conftree.NewMapping()
	config.Set("db", db)
	config.Set("mediaFormats", conftree.NewSequence(
		conftree.Scalar{Val: "images"},
		conftree.Scalar{Val: "audio"},
	))
	config.Set("timeout", conftree.Scalar{})

	eConfig := map[string]interface{}{
		"db": map[string]interface{}{
			"host": "stat.mydb.com",
			"port": int64(5432),
		},
		"mediaFormats": []interface{}{"images", "audio"},
		"timeout":      nil,
	}

	tConfig := config.Interface()

	if !reflect.DeepEqual(tConfig, eConfig) {
		t.Errorf("unexpected configuration returned: %#v", tConfig)
	}
}

func TestMarshalJSON(t *testing.T) {
	config := conftree.NewMapping()
	config.Set("zoo", conftree.Scalar{Val: int64(1)})
	config.Set("bar", conftree.NewSequence())
	config.Set("foo", conftree.Scalar{Val: "valA"})

	data, err := json.Marshal(config)

	if err != nil {
		t.Error(err)
		return
	}

	eJSON := `{"zoo":1,"bar":[],"foo":"valA"}`

	if string(data) != eJSON {
		t.Errorf("unexpected serialization returned: %s", data)
	}

	parsed, err := conftree.ParseJSON(data)

	if err != nil {
		t.Error(err)
		return
	}

	if !conftree.Equal(parsed, config) {
		t.Errorf("unexpected configuration after round trip: %#v",
			parsed.Interface())
	}
}
