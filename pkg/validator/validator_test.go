package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach/pkg/goutil"
)

type testForm struct {
	Keyword *string `json:"keyword,omitempty"`
	Page    *uint32 `json:"page,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

func TestFormValidate(t *testing.T) {
	form := MustForm(map[string]Validator{
		"keyword": &String{
			Optional: true,
			MaxLen:   5,
		},
		"page": &UInt32{
			Optional: true,
			Max:      goutil.Uint32(10),
		},
		"enabled": &Bool{
			Optional: true,
		},
	})

	tests := []struct {
		name    string
		req     *testForm
		wantErr string
	}{
		{
			name: "nil request",
			req:  nil,
		},
		{
			name: "empty request",
			req:  new(testForm),
		},
		{
			name: "all fields valid",
			req: &testForm{
				Keyword: goutil.String("abc"),
				Page:    goutil.Uint32(3),
				Enabled: goutil.Bool(true),
			},
		},
		{
			name: "keyword too long",
			req: &testForm{
				Keyword: goutil.String("abcdef"),
			},
			wantErr: "keyword: max length is 5",
		},
		{
			name: "page above max",
			req: &testForm{
				Page: goutil.Uint32(11),
			},
			wantErr: "page: max value is 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := form.Validate(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestStringValidator(t *testing.T) {
	required := &String{}
	assert.ErrorIs(t, required.Validate((*string)(nil)), ErrIsRequired)
	assert.NoError(t, required.Validate("x"))

	unsetZero := &String{UnsetZero: true}
	assert.ErrorIs(t, unsetZero.Validate(""), ErrIsRequired)

	in := &String{In: []string{"lead", "campaign"}}
	assert.NoError(t, in.Validate("lead"))
	assert.Error(t, in.Validate("order"))

	assert.ErrorIs(t, required.Validate(42), ErrInvalidType)
}

func TestUInt32Validator(t *testing.T) {
	v := &UInt32{
		Min: goutil.Uint32(1),
		Max: goutil.Uint32(100),
	}

	assert.ErrorIs(t, v.Validate((*uint32)(nil)), ErrIsRequired)
	assert.Error(t, v.Validate(uint32(0)))
	assert.NoError(t, v.Validate(uint32(50)))
	assert.Error(t, v.Validate(uint32(101)))
}

func TestMustFormPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() {
		MustForm(nil)
	})
}
