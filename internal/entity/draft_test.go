package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateProgress(t *testing.T) {
	cases := []struct {
		name string
		data FormData
		want int
	}{
		{"empty", FormData{}, 0},
		{"nil map", nil, 0},
		{"one field", NewFormData("name", "A"), 17},
		{"name and email", NewFormData("name", "Jane", "email", "j@x.com", "company", "", "phone", "", "service", "", "message", ""), 33},
		{"blank values ignored", NewFormData("name", "   ", "email", "\t"), 0},
		{"extra keys ignored", NewFormData("name", "A", "budget", "10k", "utm_source", "ads"), 17},
		{"all fields", NewFormData("name", "A", "email", "a@b.c", "company", "C", "phone", "1", "service", "seo", "message", "hi"), 100},
		{"null value", FormData{"name": nil, "email": strPtr("a@b.c")}, 17},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateProgress(tc.data))
		})
	}
}

func TestFormDataUnmarshal(t *testing.T) {
	var d FormData
	err := json.Unmarshal([]byte(`{"name":"A","phone":null,"age":42,"consent":true,"custom":"x"}`), &d)
	require.NoError(t, err)

	assert.Equal(t, "A", d.Get("name"))
	assert.Contains(t, d, "phone")
	assert.Nil(t, d["phone"])
	assert.Equal(t, "42", d.Get("age"))
	assert.Equal(t, "true", d.Get("consent"))
	assert.Equal(t, "x", d.Get("custom"))
}

func TestFormDataUnmarshalRejectsNested(t *testing.T) {
	var d FormData
	assert.Error(t, json.Unmarshal([]byte(`{"name":{"first":"A"}}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`{"tags":["a"]}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &d))
}

func TestFormDataCloneIsDeep(t *testing.T) {
	orig := NewFormData("name", "A")
	cp := orig.Clone()
	*cp["name"] = "B"

	assert.Equal(t, "A", orig.Get("name"))
	assert.Equal(t, "B", cp.Get("name"))
}

func TestParseFormType(t *testing.T) {
	for _, raw := range []string{"lead", "contact", "quiz"} {
		ft, err := ParseFormType(raw)
		require.NoError(t, err)
		assert.Equal(t, FormType(raw), ft)
	}

	_, err := ParseFormType("newsletter")
	assert.Error(t, err)
	_, err = ParseFormType("")
	assert.Error(t, err)
}

func TestNextExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(7*24*time.Hour), NextExpiry(now))
}

func strPtr(s string) *string { return &s }
