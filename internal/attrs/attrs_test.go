// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

type testAttr struct {
	Key           string `yaml:"key"`
	Include       bool   `yaml:"include"`
	OutputKey     string `yaml:"outputKey"`
	TransformSpec string `yaml:"transformSpec"`
}

// testSetCase represents a single test case for TestAttrList_Set.
type testSetCase struct {
	Name      string     `yaml:"name"`
	Initial   []testAttr `yaml:"initial"`
	Value     string     `yaml:"value"`
	WantLen   int        `yaml:"wantLen"`
	WantAttrs []testAttr `yaml:"wantAttrs"`
	WantErr   bool       `yaml:"wantErr"`
}

// loadTestData loads test data from embedded YAML files.
func loadTestData(filename string, v any) error {
	data, err := testDataFS.ReadFile("testdata/" + filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

func TestAttrList_Set(t *testing.T) {
	var tests []testSetCase
	require.NoError(t, loadTestData("set_cases.yaml", &tests))
	require.NotEmpty(t, tests)

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			var a AttrList
			for _, i := range tt.Initial {
				a = append(a, Attr(i))
			}

			err := a.Set(tt.Value)
			if tt.WantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, a, tt.WantLen)
			for i, want := range tt.WantAttrs {
				assert.Equal(t, Attr(want), a[i], "attr[%d]", i)
			}
		})
	}
}

func TestAttrList_SetGlobalTransformSpec(t *testing.T) {
	a := AttrList{
		{Key: "*", TransformSpec: "U"},
		{Key: "type", OutputKey: "type", Include: true, TransformSpec: "l"},
		{Key: "line", OutputKey: "line", Include: true},
	}
	a.SetGlobalTransformSpec()

	assert.Equal(t, "U,l", a[1].TransformSpec)
	assert.Equal(t, "U,", a[2].TransformSpec)
	assert.Equal(t, "lower", a[1].Transform("Lower"), "attr spec overrides global")
	assert.Equal(t, "UPPER", a[2].Transform("upper"))

	none := AttrList{{Key: "type", TransformSpec: "l"}}
	none.SetGlobalTransformSpec()
	assert.Equal(t, "l", none[0].TransformSpec)
}

func TestAttr_Transform(t *testing.T) {
	tests := []struct {
		name  string
		spec  string
		input interface{}
		want  interface{}
	}{
		{name: "no spec", spec: "", input: "Post", want: "Post"},
		{name: "lower", spec: "l", input: "Post", want: "post"},
		{name: "upper", spec: "u", input: "Post", want: "POST"},
		{name: "last case wins", spec: "u,l", input: "Post", want: "post"},
		{name: "truncate", spec: "4", input: "attachment", want: "atta"},
		{name: "short value untouched", spec: "40", input: "page", want: "page"},
		{name: "ellipsis", spec: "-8", input: "There are 10 posts", want: "The..sts"},
		{name: "non string untouched", spec: "u", input: 10, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Attr{TransformSpec: tt.spec}
			assert.Equal(t, tt.want, a.Transform(tt.input))
		})
	}
}

func TestAttrList_String(t *testing.T) {
	var a AttrList
	require.NoError(t, a.Set("type,count:n:U"))
	assert.Equal(t, "type:type:,count:n:U", a.String())
	assert.Equal(t, "list", a.Type())
}

func TestAttrList_Included(t *testing.T) {
	var a AttrList
	require.NoError(t, a.Set("type,!count,line:sentence,*::u"))
	assert.Equal(t, []string{"type", "sentence"}, a.OutputKeys())
}
