package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRewritesLiteralsAsDoubles(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "5+3+2", want: "5.0+3.0+2.0"},
		{in: "8/2", want: "8.0/2.0"},
		{in: ".5*4", want: "0.5*4.0"},
		{in: "5.+1", want: "5.0+1.0"},
		{in: "1.25-007", want: "1.25-7.0"},
		{in: "-5*-3", want: "-5.0*-3.0"},
		{in: "2 * (3 + 4)", want: "2.0 * (3.0 + 4.0)"},
		{in: "1e5", want: "100000.0"},
		{in: "1e+22+1", want: "10000000000000000000000.0+1.0"},
		{in: "2.5E-3*4", want: "0.0025*4.0"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Normalize(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeRejectsUnsafeInput(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{in: "", wantErr: ErrEmptyExpression},
		{in: "   ", wantErr: ErrEmptyExpression},
		{in: "1.2.3", wantErr: ErrInvalidNumber},
		{in: ".", wantErr: ErrInvalidNumber},
		{in: "5+.", wantErr: ErrInvalidNumber},
		{in: "1e", wantErr: ErrUnexpectedCharacter},
		{in: "1e+", wantErr: ErrUnexpectedCharacter},
		{in: "e5", wantErr: ErrUnexpectedCharacter},
		{in: "1e400", wantErr: ErrInvalidNumber},
		{in: "len(\"a\")", wantErr: ErrUnexpectedCharacter},
		{in: "Invalid Expression", wantErr: ErrUnexpectedCharacter},
		{in: "+Inf+2", wantErr: ErrUnexpectedCharacter},
		{in: "5**2", wantErr: ErrUnexpectedOperator},
		{in: "8//2", wantErr: ErrUnexpectedOperator},
		{in: "8/*2", wantErr: ErrUnexpectedOperator},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			_, err := Normalize(tc.in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
