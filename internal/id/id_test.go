package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for range 1000 {
		tok, err := Token()
		require.NoError(t, err)
		assert.Len(t, tok, 21)
		assert.False(t, ids[tok], "token should be unique: %s", tok)
		ids[tok] = true
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int64
		wantErr bool
	}{
		{name: "empty", in: "", want: nil},
		{name: "blank", in: "  ", want: nil},
		{name: "single", in: "4", want: []int64{4}},
		{name: "spaces and blanks", in: "1, 5,,9 ", want: []int64{1, 5, 9}},
		{name: "duplicates collapse", in: "3,1,3", want: []int64{3, 1}},
		{name: "not a number", in: "1,abc", wantErr: true},
		{name: "zero", in: "0", wantErr: true},
		{name: "negative", in: "-2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseList(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
