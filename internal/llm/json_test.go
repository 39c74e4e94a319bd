package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"```\n[1,2]\n```", `[1,2]`},
		{"Sure! Here it is: {\"a\": {\"b\": 2}} Hope that helps", `{"a": {"b": 2}}`},
		{"Result: [{\"x\": 1}]", `[{"x": 1}]`},
		{"nothing here", ""},
		{"} backwards {", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CleanJSON(tc.in), tc.in)
	}
}
