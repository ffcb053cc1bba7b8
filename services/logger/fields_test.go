package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/studymatch/core/user"
)

func TestParseArgs(t *testing.T) {
	errBoom := errors.New("boom")
	usr := user.User{ID: "u1", Name: "Ada", Email: "ada@uni.edu"}

	tests := []struct {
		name    string
		args    []interface{}
		wantErr error
		wantUsr bool
		wantKVs []interface{}
	}{
		{name: "empty", wantKVs: []interface{}{}},
		{
			name:    "key values",
			args:    []interface{}{"session_id", "s1", "amount", 50},
			wantKVs: []interface{}{"session_id", "s1", "amount", 50},
		},
		{
			name:    "error and user",
			args:    []interface{}{errBoom, usr},
			wantErr: errBoom,
			wantUsr: true,
		},
		{
			name:    "dangling key",
			args:    []interface{}{"alone"},
			wantKVs: []interface{}{"extra", "alone"},
		},
		{
			name:    "map",
			args:    []interface{}{map[string]interface{}{"k": "v"}},
			wantKVs: []interface{}{"k", "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parseArgs(tt.args)
			assert.Equal(t, tt.wantErr, e.err)
			assert.Equal(t, tt.wantUsr, e.usr != nil)
			if tt.wantErr == nil && !tt.wantUsr {
				assert.Equal(t, tt.wantKVs, e.keysAndValues())
			}
		})
	}
}

func TestParseArgs_KeepsFirstUser(t *testing.T) {
	e := parseArgs([]interface{}{user.User{ID: "a"}, user.User{ID: "b"}})
	if assert.NotNil(t, e.usr) {
		assert.Equal(t, "a", e.usr.ID)
	}
	assert.Equal(t, []interface{}{"actor_id", "a"}, e.keysAndValues())
}
