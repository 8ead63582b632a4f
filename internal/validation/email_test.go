package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "bob@bob.com", wantErr: false},
		{name: "valid with plus tag", email: "bob+auth@example.org", wantErr: false},
		{name: "empty", email: "", wantErr: true},
		{name: "no at sign", email: "bob.bob.com", wantErr: true},
		{name: "no domain dot", email: "bob@localhost", wantErr: true},
		{name: "two at signs", email: "bob@@bob.com", wantErr: true},
		{name: "whitespace", email: "bob @bob.com", wantErr: true},
		{name: "too long", email: strings.Repeat("a", MaxEmailLen) + "@x.io", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "mySuperPwd", wantErr: false},
		{name: "single char", password: "x", wantErr: false},
		{name: "exactly max", password: strings.Repeat("p", MaxPasswordLen), wantErr: false},
		{name: "empty", password: "", wantErr: true},
		{name: "over bcrypt limit", password: strings.Repeat("p", MaxPasswordLen+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
